package config

import (
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() {
	c.Paths.CacheDir = expandPath(c.Paths.CacheDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
	c.Paths.StateDir = expandPath(c.Paths.StateDir)

	c.Tools.FFmpeg = expandPath(c.Tools.FFmpeg)
	c.Tools.FFprobe = expandPath(c.Tools.FFprobe)
	c.Tools.Mkvmerge = expandPath(c.Tools.Mkvmerge)
	c.Tools.Mkvextract = expandPath(c.Tools.Mkvextract)

	if c.Startup.UpdateCheckIntervalHours <= 0 {
		c.Startup.UpdateCheckIntervalHours = defaultUpdateCheckIntervalHours
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func expandPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			if trimmed == "~" {
				return home
			}
			return filepath.Join(home, trimmed[2:])
		}
	}
	return trimmed
}
