package toolchain

import "time"

// Stage names a provisioning phase for progress reporting.
type Stage string

const (
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
)

// Progress is one progress event emitted during provisioning.
type Progress struct {
	Tool  string
	Stage Stage

	// Download fields. TotalBytes is -1 when the server did not report a
	// length.
	TotalBytes   int64
	CurrentBytes int64

	// Extract fields.
	FilesTotal  int
	FilesDone   int
	CurrentItem string
}

// Reporter receives progress events. A nil Reporter disables reporting.
type Reporter func(Progress)

// Download events are throttled to whichever of these fires first, bounding
// the UI update rate.
const (
	progressInterval = 100 * time.Millisecond
	progressByteStep = 256 << 10
)

// progressGate rate-limits download progress events: an event passes when
// enough time has elapsed or enough bytes have moved since the last one.
type progressGate struct {
	lastEmit  time.Time
	lastBytes int64
}

func (g *progressGate) ready(now time.Time, current int64) bool {
	if g.lastEmit.IsZero() ||
		now.Sub(g.lastEmit) >= progressInterval ||
		current-g.lastBytes >= progressByteStep {
		g.lastEmit = now
		g.lastBytes = current
		return true
	}
	return false
}
