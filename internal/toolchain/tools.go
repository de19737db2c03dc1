package toolchain

import (
	"runtime"
	"sort"
)

// Tool file keys. These key the extract maps in the manifest and the
// resolved path maps handed back to callers.
const (
	ToolFFmpeg     = "ffmpeg"
	ToolFFprobe    = "ffprobe"
	ToolMkvmerge   = "mkvmerge"
	ToolMkvextract = "mkvextract"
)

// Tool family names. A family is one downloadable archive shipping one or
// more executables.
const (
	FamilyFFmpeg     = "ffmpeg"
	FamilyMKVToolNix = "mkvtoolnix"
)

var familyFileKeys = map[string][]string{
	FamilyFFmpeg:     {ToolFFmpeg, ToolFFprobe},
	FamilyMKVToolNix: {ToolMkvmerge, ToolMkvextract},
}

// Families returns the manifest tool family names in stable order.
func Families() []string {
	names := make([]string, 0, len(familyFileKeys))
	for name := range familyFileKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiredTools returns every tool file key the CLI depends on, in stable
// order.
func RequiredTools() []string {
	keys := make([]string, 0, 4)
	for _, family := range Families() {
		keys = append(keys, familyFileKeys[family]...)
	}
	sort.Strings(keys)
	return keys
}

// ExecutableName appends the platform executable suffix to a bare tool name.
func ExecutableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
