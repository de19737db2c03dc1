package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"submux/internal/config"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "submux", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, ".local", "share", "submux") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if !cfg.Startup.PromptOnStartup || !cfg.Startup.AutoUpdate {
		t.Fatal("expected startup prompting enabled by default")
	}
	if cfg.Startup.UpdateCheckIntervalHours != 24 {
		t.Fatalf("unexpected update interval: %d", cfg.Startup.UpdateCheckIntervalHours)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadAppliesFileValuesAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[paths]
cache_dir = "~/tools"

[tools]
mkvmerge = "/opt/mkvtoolnix/mkvmerge"

[startup]
auto_update = false
update_check_interval_hours = -3

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, "tools") {
		t.Fatalf("expected ~ expansion, got %q", cfg.Paths.CacheDir)
	}
	if cfg.Tools.Mkvmerge != "/opt/mkvtoolnix/mkvmerge" {
		t.Fatalf("unexpected mkvmerge override: %q", cfg.Tools.Mkvmerge)
	}
	if cfg.Startup.AutoUpdate {
		t.Fatal("expected auto_update disabled")
	}
	if cfg.Startup.UpdateCheckIntervalHours != 24 {
		t.Fatalf("non-positive interval must coerce to default, got %d", cfg.Startup.UpdateCheckIntervalHours)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lower-cased level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[tools]
prefer_bundled = true
prefer_system = true

[logging]
level = "loud"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "logging.level") {
		t.Fatalf("expected level problem in %q", msg)
	}
	if !strings.Contains(msg, "mutually exclusive") {
		t.Fatalf("expected preference conflict in %q", msg)
	}
}

func TestToolOverridesOmitsEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "/usr/local/bin/ffmpeg"

	overrides := cfg.ToolOverrides()
	if len(overrides) != 1 {
		t.Fatalf("expected one override, got %v", overrides)
	}
	if overrides["ffmpeg"] != "/usr/local/bin/ffmpeg" {
		t.Fatalf("unexpected override map: %v", overrides)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("first WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
