package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Tools contains per-tool path overrides and resolution preferences.
type Tools struct {
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	Mkvmerge   string `toml:"mkvmerge"`
	Mkvextract string `toml:"mkvextract"`

	PreferBundled bool `toml:"prefer_bundled"`
	PreferSystem  bool `toml:"prefer_system"`
}

// Startup contains configuration for the interactive startup gate.
type Startup struct {
	PromptOnStartup          bool `toml:"prompt_on_startup"`
	AutoUpdate               bool `toml:"auto_update"`
	UpdateCheckIntervalHours int  `toml:"update_check_interval_hours"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root submux configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Startup Startup `toml:"startup"`
	Logging Logging `toml:"logging"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, ".config", "submux", "config.toml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file yields defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	resolved := path
	if resolved == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	}
	resolved = expandPath(resolved)

	cfg := Default()
	exists := true

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// ToolOverrides returns the advisory per-tool path overrides keyed by tool
// file key; empty overrides are omitted.
func (c *Config) ToolOverrides() map[string]string {
	overrides := map[string]string{}
	for key, value := range map[string]string{
		"ffmpeg":     c.Tools.FFmpeg,
		"ffprobe":    c.Tools.FFprobe,
		"mkvmerge":   c.Tools.Mkvmerge,
		"mkvextract": c.Tools.Mkvextract,
	} {
		if value != "" {
			overrides[key] = value
		}
	}
	return overrides
}

// StatePath returns the location of the persisted startup state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "startup.json")
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
