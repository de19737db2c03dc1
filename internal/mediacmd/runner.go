package mediacmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner executes an external tool, discarding its output.
type commandRunner func(ctx context.Context, name string, args ...string) error

// outputRunner executes an external tool and returns its stdout.
type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// defaultCommandRunner executes the tool and folds its combined output into
// the error on failure.
func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// defaultOutputRunner executes the tool and returns stdout, folding stderr
// into the error on failure.
func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
