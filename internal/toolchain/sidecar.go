package toolchain

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"submux/internal/fileutil"
)

// SidecarFileName is the hash sidecar written inside each toolset cache
// directory. It is the sole oracle for cache validity.
const SidecarFileName = "hashes.json"

// HashSidecar records the verified SHA-256 of every extracted executable,
// keyed by path relative to the toolset directory.
type HashSidecar struct {
	Files map[string]string `json:"files"`
}

func loadSidecar(dir string) (HashSidecar, bool, error) {
	data, ok, err := fileutil.ReadFileIfExists(filepath.Join(dir, SidecarFileName))
	if err != nil || !ok {
		return HashSidecar{}, false, err
	}
	var sidecar HashSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return HashSidecar{}, false, fmt.Errorf("parse hash sidecar: %w", err)
	}
	return sidecar, true, nil
}

func writeSidecar(dir string, sidecar HashSidecar) error {
	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hash sidecar: %w", err)
	}
	return fileutil.WriteFileAtomic(filepath.Join(dir, SidecarFileName), data, 0o644)
}

// validateToolset reports whether dir holds a complete, untampered toolset:
// a sidecar must exist and every declared file must be present with a
// matching SHA-256. Any shortfall invalidates the whole directory; partial
// repair is never attempted.
func validateToolset(dir string, entry PlatformEntry) bool {
	sidecar, ok, err := loadSidecar(dir)
	if err != nil || !ok {
		return false
	}

	for _, family := range Families() {
		def, ok := entry[family]
		if !ok {
			return false
		}
		for _, rel := range def.ExtractMap {
			expected := sidecar.Files[rel]
			if expected == "" {
				return false
			}
			actual, err := fileutil.FileSHA256(filepath.Join(dir, rel))
			if err != nil {
				return false
			}
			if !strings.EqualFold(actual, expected) {
				return false
			}
		}
	}
	return true
}

// SidecarComplete reports whether dir contains a non-empty hash sidecar,
// the marker of a fully finished provision.
func SidecarComplete(dir string) bool {
	sidecar, ok, err := loadSidecar(dir)
	return err == nil && ok && len(sidecar.Files) > 0
}
