package mediacmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"submux/internal/logging"
)

// TrackOutput names the destination file for one extracted track.
type TrackOutput struct {
	TrackID int
	Path    string
}

// ExtractRequest describes a subtitle extraction operation.
type ExtractRequest struct {
	VideoPath string
	Tracks    []TrackOutput
}

// Extractor dumps subtitle tracks from MKV containers using mkvextract.
type Extractor struct {
	logger *slog.Logger
	tools  Tools
	run    commandRunner
}

// NewExtractor constructs an extractor around resolved tool paths.
func NewExtractor(tools Tools, logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logging.NewComponentLogger(logger, "extract"),
		tools:  tools,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (e *Extractor) WithCommandRunner(r commandRunner) *Extractor {
	if r != nil {
		e.run = r
	}
	return e
}

// Extract dumps the requested tracks in a single mkvextract run.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return fmt.Errorf("video path is required")
	}
	if len(req.Tracks) == 0 {
		return fmt.Errorf("at least one track is required")
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return fmt.Errorf("source video not found: %w", err)
	}

	args := ExtractArgs(req)
	e.logger.Debug("executing mkvextract",
		logging.String("video", req.VideoPath),
		logging.Int("track_count", len(req.Tracks)),
	)
	if err := e.run(ctx, e.tools.Mkvextract, args...); err != nil {
		return fmt.Errorf("mkvextract failed: %w", err)
	}

	for _, track := range req.Tracks {
		if _, err := os.Stat(track.Path); err != nil {
			return fmt.Errorf("mkvextract did not produce %s: %w", track.Path, err)
		}
	}
	e.logger.Info("subtitle tracks extracted",
		logging.String("video", req.VideoPath),
		logging.Int("tracks", len(req.Tracks)),
	)
	return nil
}

// ExtractArgs builds the mkvextract argument list for an extract request.
func ExtractArgs(req ExtractRequest) []string {
	args := []string{req.VideoPath, "tracks"}
	for _, track := range req.Tracks {
		args = append(args, fmt.Sprintf("%d:%s", track.TrackID, track.Path))
	}
	return args
}
