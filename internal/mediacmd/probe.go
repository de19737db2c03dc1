package mediacmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"submux/internal/language"
	"submux/internal/logging"
)

// SubtitleTrack is one subtitle stream found in a media file.
type SubtitleTrack struct {
	Index    int
	Codec    string
	Language string
	Title    string
	Default  bool
	Forced   bool
}

// Prober inspects media files with ffprobe.
type Prober struct {
	logger *slog.Logger
	tools  Tools
	run    outputRunner
}

// NewProber constructs a prober around resolved tool paths.
func NewProber(tools Tools, logger *slog.Logger) *Prober {
	return &Prober{
		logger: logging.NewComponentLogger(logger, "probe"),
		tools:  tools,
		run:    defaultOutputRunner,
	}
}

// WithOutputRunner injects a custom output runner for tests.
func (p *Prober) WithOutputRunner(r outputRunner) *Prober {
	if r != nil {
		p.run = r
	}
	return p
}

type ffprobeDisposition struct {
	Default int `json:"default"`
	Forced  int `json:"forced"`
}

type ffprobeStream struct {
	Index       int                `json:"index"`
	CodecName   string             `json:"codec_name"`
	Disposition ffprobeDisposition `json:"disposition"`
	Tags        map[string]string  `json:"tags"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

// SubtitleTracks lists the subtitle streams in path.
func (p *Prober) SubtitleTracks(ctx context.Context, path string) ([]SubtitleTrack, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("media path is required")
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		path,
	}
	output, err := p.run(ctx, p.tools.FFprobe, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	tracks := make([]SubtitleTrack, 0, len(parsed.Streams))
	for _, stream := range parsed.Streams {
		track := SubtitleTrack{
			Index:    stream.Index,
			Codec:    stream.CodecName,
			Language: language.Normalize(stream.Tags["language"]),
			Title:    stream.Tags["title"],
			Default:  stream.Disposition.Default != 0,
			Forced:   stream.Disposition.Forced != 0,
		}
		tracks = append(tracks, track)
	}

	p.logger.Debug("probed subtitle streams",
		logging.String("path", path),
		logging.Int("count", len(tracks)),
	)
	return tracks, nil
}
