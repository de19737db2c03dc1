package startup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(message string) (bool, error)
}

// TerminalPrompter reads answers line-wise, defaulting to the terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalPrompter returns a prompter bound to stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Confirm prints the question and accepts "y" or "yes" (case-insensitive)
// as agreement. Anything else, including EOF, declines.
func (p *TerminalPrompter) Confirm(message string) (bool, error) {
	if _, err := fmt.Fprintf(p.Out, "%s [y/N]: ", message); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// StdioInteractive reports whether stdin, stdout, and stderr are all
// terminals and no CI environment is detected.
func StdioInteractive() bool {
	if ci, ok := os.LookupEnv("CI"); ok && !strings.EqualFold(ci, "false") {
		return false
	}
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return false
		}
	}
	return true
}
