package mediacmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"submux/internal/language"
	"submux/internal/logging"
)

// SubtitleInput is one subtitle file to add as a track.
type SubtitleInput struct {
	Path     string
	Language string // any ISO 639 form; normalized to ISO 639-2 for mkvmerge
	Title    string
	Default  bool
	Forced   bool
}

// MuxRequest describes a subtitle muxing operation.
type MuxRequest struct {
	VideoPath string
	Subtitles []SubtitleInput
	// Output is the destination MKV. Empty means replace VideoPath in
	// place via an atomic rename.
	Output string
	// StripExisting drops subtitle tracks already present in the source.
	StripExisting bool
}

// MuxResult reports the outcome of a mux.
type MuxResult struct {
	OutputPath  string
	TracksAdded int
}

// Muxer embeds subtitle files into MKV containers using mkvmerge.
type Muxer struct {
	logger *slog.Logger
	tools  Tools
	run    commandRunner
}

// NewMuxer constructs a muxer around resolved tool paths.
func NewMuxer(tools Tools, logger *slog.Logger) *Muxer {
	return &Muxer{
		logger: logging.NewComponentLogger(logger, "mux"),
		tools:  tools,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) *Muxer {
	if r != nil {
		m.run = r
	}
	return m
}

// Mux embeds the subtitle tracks. When replacing in place the output is
// written to a temp file beside the source and renamed over it on success.
func (m *Muxer) Mux(ctx context.Context, req MuxRequest) (MuxResult, error) {
	if strings.TrimSpace(req.VideoPath) == "" {
		return MuxResult{}, fmt.Errorf("video path is required")
	}
	if len(req.Subtitles) == 0 {
		return MuxResult{}, fmt.Errorf("at least one subtitle input is required")
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return MuxResult{}, fmt.Errorf("source video not found: %w", err)
	}
	for _, sub := range req.Subtitles {
		if _, err := os.Stat(sub.Path); err != nil {
			return MuxResult{}, fmt.Errorf("subtitle file not found %q: %w", sub.Path, err)
		}
	}

	inPlace := strings.TrimSpace(req.Output) == ""
	finalPath := req.Output
	if inPlace {
		finalPath = req.VideoPath
	}
	writePath := finalPath
	if inPlace {
		dir := filepath.Dir(req.VideoPath)
		writePath = filepath.Join(dir, ".mux-"+filepath.Base(req.VideoPath)+".tmp")
	}

	args := MuxArgs(req, writePath)

	m.logger.Debug("executing mkvmerge",
		logging.String("video", req.VideoPath),
		logging.Int("subtitle_count", len(req.Subtitles)),
		logging.Bool("strip_existing", req.StripExisting),
	)

	if err := m.run(ctx, m.tools.Mkvmerge, args...); err != nil {
		if inPlace {
			_ = os.Remove(writePath)
		}
		return MuxResult{}, fmt.Errorf("mkvmerge failed: %w", err)
	}
	if _, err := os.Stat(writePath); err != nil {
		return MuxResult{}, fmt.Errorf("mkvmerge did not produce output file: %w", err)
	}
	if inPlace {
		if err := os.Rename(writePath, finalPath); err != nil {
			_ = os.Remove(writePath)
			return MuxResult{}, fmt.Errorf("failed to replace original video: %w", err)
		}
	}

	m.logger.Info("subtitles muxed",
		logging.String("output", finalPath),
		logging.Int("tracks_added", len(req.Subtitles)),
	)
	return MuxResult{OutputPath: finalPath, TracksAdded: len(req.Subtitles)}, nil
}

// MuxArgs builds the mkvmerge argument list for a mux request.
func MuxArgs(req MuxRequest, outputPath string) []string {
	args := []string{"-o", outputPath}
	if req.StripExisting {
		args = append(args, "-S")
	}
	args = append(args, req.VideoPath)

	for _, sub := range req.Subtitles {
		lang := language.Normalize(sub.Language)
		args = append(args, "--language", "0:"+lang)

		title := sub.Title
		if title == "" {
			title = trackTitle(sub)
		}
		args = append(args, "--track-name", "0:"+title)

		if sub.Default {
			args = append(args, "--default-track", "0:yes")
		} else {
			args = append(args, "--default-track", "0:no")
		}
		if sub.Forced {
			args = append(args, "--forced-track", "0:yes")
		}
		args = append(args, sub.Path)
	}
	return args
}

func trackTitle(sub SubtitleInput) string {
	name := language.DisplayName(sub.Language)
	if sub.Forced {
		name += " (Forced)"
	}
	return name
}
