package mediacmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"submux/internal/logging"
)

// BurnRequest describes a subtitle burn-in re-encode.
type BurnRequest struct {
	VideoPath string
	// SubtitlePath is an external subtitle file to burn. Empty means burn
	// an embedded track selected by TrackIndex.
	SubtitlePath string
	// TrackIndex selects the embedded subtitle stream when SubtitlePath is
	// empty.
	TrackIndex int
	Output     string
	// CRF is the x264 quality target; non-positive uses the encoder
	// default.
	CRF int
	// Preset is the x264 speed preset; empty uses the encoder default.
	Preset string
}

// Burner hard-renders subtitles into video frames using ffmpeg.
type Burner struct {
	logger *slog.Logger
	tools  Tools
	run    commandRunner
}

// NewBurner constructs a burner around resolved tool paths.
func NewBurner(tools Tools, logger *slog.Logger) *Burner {
	return &Burner{
		logger: logging.NewComponentLogger(logger, "burn"),
		tools:  tools,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (b *Burner) WithCommandRunner(r commandRunner) *Burner {
	if r != nil {
		b.run = r
	}
	return b
}

// Burn re-encodes the video with subtitles rendered into the frames.
func (b *Burner) Burn(ctx context.Context, req BurnRequest) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return fmt.Errorf("video path is required")
	}
	if strings.TrimSpace(req.Output) == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return fmt.Errorf("source video not found: %w", err)
	}
	if req.SubtitlePath != "" {
		if _, err := os.Stat(req.SubtitlePath); err != nil {
			return fmt.Errorf("subtitle file not found: %w", err)
		}
	}

	args := BurnArgs(req)
	b.logger.Debug("executing ffmpeg burn-in",
		logging.String("video", req.VideoPath),
		logging.String("output", req.Output),
	)
	if err := b.run(ctx, b.tools.FFmpeg, args...); err != nil {
		_ = os.Remove(req.Output)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if _, err := os.Stat(req.Output); err != nil {
		return fmt.Errorf("ffmpeg did not produce output file: %w", err)
	}
	b.logger.Info("subtitles burned in", logging.String("output", req.Output))
	return nil
}

// BurnArgs builds the ffmpeg argument list for a burn request.
func BurnArgs(req BurnRequest) []string {
	var filter string
	if req.SubtitlePath != "" {
		filter = "subtitles=" + escapeFilterPath(req.SubtitlePath)
	} else {
		filter = fmt.Sprintf("subtitles=%s:si=%d", escapeFilterPath(req.VideoPath), req.TrackIndex)
	}

	args := []string{"-y", "-i", req.VideoPath, "-vf", filter}
	if req.CRF > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", req.CRF))
	}
	if req.Preset != "" {
		args = append(args, "-preset", req.Preset)
	}
	args = append(args, "-c:a", "copy", req.Output)
	return args
}

// escapeFilterPath escapes the characters the ffmpeg filter parser treats
// specially inside filter option values.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(path)
}
