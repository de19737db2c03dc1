package toolchain

import (
	"path/filepath"
	"testing"
)

func TestCacheRootPrecedence(t *testing.T) {
	override := t.TempDir()
	envDir := t.TempDir()

	t.Setenv(CacheDirEnv, envDir)

	got, err := CacheRoot(override)
	if err != nil {
		t.Fatalf("CacheRoot with override: %v", err)
	}
	if got != override {
		t.Fatalf("override ignored: got %q, want %q", got, override)
	}

	got, err = CacheRoot("")
	if err != nil {
		t.Fatalf("CacheRoot with env: %v", err)
	}
	if got != envDir {
		t.Fatalf("env ignored: got %q, want %q", got, envDir)
	}

	t.Setenv(CacheDirEnv, "")
	got, err = CacheRoot("")
	if err != nil {
		t.Fatalf("CacheRoot default: %v", err)
	}
	if got == "" || got == envDir || got == override {
		t.Fatalf("default root unexpected: %q", got)
	}
}

func TestToolsetRootIsVersioned(t *testing.T) {
	root := t.TempDir()

	got, err := ToolsetRoot(PlatformLinuxX64, "2024.09.15", root)
	if err != nil {
		t.Fatalf("ToolsetRoot: %v", err)
	}
	want := filepath.Join(root, PlatformLinuxX64, "2024.09.15")
	if got != want {
		t.Fatalf("ToolsetRoot = %q, want %q", got, want)
	}

	other, err := ToolsetRoot(PlatformLinuxX64, "2025.01.01", root)
	if err != nil {
		t.Fatalf("ToolsetRoot: %v", err)
	}
	if other == got {
		t.Fatal("different versions resolved to the same directory")
	}
}
