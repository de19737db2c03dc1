package testsupport

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"submux/internal/config"
)

// Option mutates a test configuration before it is returned.
type Option func(*config.Config)

// WithLogLevel sets the logging level.
func WithLogLevel(level string) Option {
	return func(cfg *config.Config) {
		cfg.Logging.Level = level
	}
}

// WithToolOverride sets a per-tool executable path override.
func WithToolOverride(key, path string) Option {
	return func(cfg *config.Config) {
		switch key {
		case "ffmpeg":
			cfg.Tools.FFmpeg = path
		case "ffprobe":
			cfg.Tools.FFprobe = path
		case "mkvmerge":
			cfg.Tools.Mkvmerge = path
		case "mkvextract":
			cfg.Tools.Mkvextract = path
		}
	}
}

// WithStartupPrompts enables or disables the interactive startup gate.
func WithStartupPrompts(enabled bool) Option {
	return func(cfg *config.Config) {
		cfg.Startup.PromptOnStartup = enabled
		cfg.Startup.AutoUpdate = enabled
	}
}

// NewConfig returns a default configuration rooted in a per-test temporary
// directory so tests never touch real user state.
func NewConfig(t *testing.T, opts ...Option) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteExecutable writes content to path with the executable bit set.
func WriteExecutable(t *testing.T, path string, content []byte) {
	t.Helper()
	WriteFile(t, path, content)
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}

// BuildZip assembles a zip archive at path from entry name to content.
func BuildZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip %s: %v", path, err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("add zip entry %s: %v", name, err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("finish zip %s: %v", path, err)
	}
}

// BuildTarGz assembles a gzip-compressed tar archive at path from entry name
// to content.
func BuildTarGz(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create tar.gz %s: %v", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		header := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatalf("write tar entry %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("finish tar %s: %v", path, err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("finish gzip %s: %v", path, err)
	}
}
