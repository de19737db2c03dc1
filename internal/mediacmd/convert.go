package mediacmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"submux/internal/logging"
)

// subtitle codecs by output extension.
var codecByExtension = map[string]string{
	".srt": "srt",
	".ass": "ass",
	".ssa": "ass",
	".vtt": "webvtt",
}

// ConvertRequest describes a subtitle format conversion.
type ConvertRequest struct {
	InputPath  string
	OutputPath string
	// Codec forces the output codec; empty derives it from the output
	// extension.
	Codec string
}

// Converter transcodes subtitle files between text formats using ffmpeg.
type Converter struct {
	logger *slog.Logger
	tools  Tools
	run    commandRunner
}

// NewConverter constructs a converter around resolved tool paths.
func NewConverter(tools Tools, logger *slog.Logger) *Converter {
	return &Converter{
		logger: logging.NewComponentLogger(logger, "convert"),
		tools:  tools,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (c *Converter) WithCommandRunner(r commandRunner) *Converter {
	if r != nil {
		c.run = r
	}
	return c
}

// Convert transcodes the subtitle file.
func (c *Converter) Convert(ctx context.Context, req ConvertRequest) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}

	args, err := ConvertArgs(req)
	if err != nil {
		return err
	}
	c.logger.Debug("executing ffmpeg convert",
		logging.String("input", req.InputPath),
		logging.String("output", req.OutputPath),
	)
	if err := c.run(ctx, c.tools.FFmpeg, args...); err != nil {
		_ = os.Remove(req.OutputPath)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		return fmt.Errorf("ffmpeg did not produce output file: %w", err)
	}
	c.logger.Info("subtitle converted", logging.String("output", req.OutputPath))
	return nil
}

// ConvertArgs builds the ffmpeg argument list for a convert request.
func ConvertArgs(req ConvertRequest) ([]string, error) {
	codec := req.Codec
	if codec == "" {
		ext := strings.ToLower(filepath.Ext(req.OutputPath))
		codec = codecByExtension[ext]
		if codec == "" {
			return nil, fmt.Errorf("cannot derive subtitle codec from extension %q", ext)
		}
	}
	return []string{"-y", "-i", req.InputPath, "-c:s", codec, req.OutputPath}, nil
}
