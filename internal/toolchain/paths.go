package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// CacheDirEnv overrides the cache root when set.
const CacheDirEnv = "SUBMUX_TOOLS_DIR"

// CacheRoot determines the toolchain cache root: explicit override first,
// then the environment variable, then the OS-appropriate per-user data
// directory.
func CacheRoot(override string) (string, error) {
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve cache dir override: %w", err)
		}
		return abs, nil
	}

	if env, ok := os.LookupEnv(CacheDirEnv); ok && env != "" {
		abs, err := filepath.Abs(env)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", CacheDirEnv, err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "submux", "tools"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "submux", "tools"), nil
		}
		return filepath.Join(home, "AppData", "Local", "submux", "tools"), nil
	default:
		return filepath.Join(home, ".local", "share", "submux", "tools"), nil
	}
}

// ToolsetRoot returns the versioned cache directory for one platform's
// toolset. Versions are never mixed within one directory.
func ToolsetRoot(platform, version, override string) (string, error) {
	root, err := CacheRoot(override)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, platform, version), nil
}
