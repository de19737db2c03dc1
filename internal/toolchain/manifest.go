package toolchain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"submux/internal/logging"
)

//go:embed manifest.json
var embeddedManifest []byte

// Manifest declares, per platform, where each tool family's archive lives
// and how to verify and extract it.
type Manifest struct {
	ToolsetVersion string                   `json:"toolsetVersion"`
	Platforms      map[string]PlatformEntry `json:"platforms"`
}

// PlatformEntry maps tool family names to their archive definitions.
type PlatformEntry map[string]ArchiveDef

// ArchiveDef describes one downloadable archive.
type ArchiveDef struct {
	ArchiveURL    string            `json:"archiveUrl"`
	ChecksumURL   string            `json:"checksumUrl"`
	ChecksumEntry string            `json:"checksumEntry,omitempty"`
	ArchiveType   string            `json:"archiveType"`
	ExtractMap    map[string]string `json:"extractMap"`
}

// Loader reads and validates the toolset manifest, preferring a disk
// override over the embedded default.
type Loader struct {
	overridePath string
	logger       *slog.Logger
}

// NewLoader constructs a manifest loader. overridePath may be empty.
func NewLoader(overridePath string, logger *slog.Logger) *Loader {
	return &Loader{
		overridePath: strings.TrimSpace(overridePath),
		logger:       logging.NewComponentLogger(logger, "manifest"),
	}
}

// Load deserializes and validates the manifest.
func (l *Loader) Load() (*Manifest, error) {
	data := embeddedManifest
	if l.overridePath != "" {
		contents, err := os.ReadFile(l.overridePath)
		if err != nil {
			return nil, fmt.Errorf("read manifest override %s: %w", l.overridePath, err)
		}
		l.logger.Debug("using manifest override", logging.String("path", l.overridePath))
		data = contents
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Platform returns the entry for the given platform identifier.
func (m *Manifest) Platform(id string) (PlatformEntry, bool) {
	entry, ok := m.Platforms[id]
	return entry, ok
}

// Validate checks the manifest structurally: a non-empty version, at least
// one platform, and for every platform a complete definition of every tool
// family including the family's required extract-map keys.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.ToolsetVersion) == "" {
		return &ConfigurationError{Field: "toolsetVersion"}
	}
	if len(m.Platforms) == 0 {
		return &ConfigurationError{Field: "platforms"}
	}

	for platform, entry := range m.Platforms {
		for _, family := range Families() {
			def, ok := entry[family]
			if !ok {
				return &ConfigurationError{Platform: platform, Tool: family, Field: "definition"}
			}
			if strings.TrimSpace(def.ArchiveURL) == "" {
				return &ConfigurationError{Platform: platform, Tool: family, Field: "archiveUrl"}
			}
			if strings.TrimSpace(def.ChecksumURL) == "" {
				return &ConfigurationError{Platform: platform, Tool: family, Field: "checksumUrl"}
			}
			if strings.TrimSpace(def.ArchiveType) == "" {
				return &ConfigurationError{Platform: platform, Tool: family, Field: "archiveType"}
			}
			if len(def.ExtractMap) == 0 {
				return &ConfigurationError{Platform: platform, Tool: family, Field: "extractMap"}
			}
			for _, key := range familyFileKeys[family] {
				if strings.TrimSpace(def.ExtractMap[key]) == "" {
					return &ConfigurationError{Platform: platform, Tool: family, Field: "extractMap." + key}
				}
			}
		}
	}
	return nil
}
