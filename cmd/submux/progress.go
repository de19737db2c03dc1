package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"submux/internal/logging"
	"submux/internal/toolchain"
)

// progressSink renders provisioning progress: a live bar on a terminal,
// throttled log lines otherwise.
type progressSink struct {
	ctx *commandContext

	mu      sync.Mutex
	barKey  string
	bar     *progressbar.ProgressBar
	isTerm  bool
	checked bool
}

func (c *commandContext) progressReporter() toolchain.Reporter {
	sink := &progressSink{ctx: c}
	return sink.report
}

func (s *progressSink) terminal() bool {
	if !s.checked {
		s.isTerm = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		s.checked = true
	}
	return s.isTerm
}

func (s *progressSink) report(p toolchain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.terminal() {
		s.logLine(p)
		return
	}

	switch p.Stage {
	case toolchain.StageDownload:
		key := string(p.Stage) + "/" + p.Tool
		if s.barKey != key {
			s.finishBar()
			s.barKey = key
			s.bar = progressbar.NewOptions64(p.TotalBytes,
				progressbar.OptionSetDescription(fmt.Sprintf("downloading %s", p.Tool)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = s.bar.Set64(p.CurrentBytes)
		if p.TotalBytes > 0 && p.CurrentBytes >= p.TotalBytes {
			s.finishBar()
		}
	case toolchain.StageExtract:
		s.finishBar()
		fmt.Fprintf(os.Stderr, "extracting %s: %s (%d/%d)\n", p.Tool, p.CurrentItem, p.FilesDone, p.FilesTotal)
	}
}

func (s *progressSink) finishBar() {
	if s.bar != nil {
		_ = s.bar.Finish()
		s.bar = nil
		s.barKey = ""
	}
}

func (s *progressSink) logLine(p toolchain.Progress) {
	logger := s.ctx.ensureLogger()
	switch p.Stage {
	case toolchain.StageDownload:
		logger.Info("download progress",
			logging.String(logging.FieldTool, p.Tool),
			logging.String("transferred", humanize.Bytes(uint64(p.CurrentBytes))),
			logging.String("total", humanize.Bytes(uint64(max64(p.TotalBytes, 0)))),
		)
	case toolchain.StageExtract:
		logger.Info("extract progress",
			logging.String(logging.FieldTool, p.Tool),
			logging.String("file", p.CurrentItem),
			logging.Int("done", p.FilesDone),
			logging.Int("total", p.FilesTotal),
		)
	}
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
