package config

import (
	"errors"
	"fmt"
	"strings"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate checks field values and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		problems = append(problems, fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if c.Tools.PreferBundled && c.Tools.PreferSystem {
		problems = append(problems, "tools: prefer_bundled and prefer_system are mutually exclusive")
	}
	if c.Paths.StateDir == "" {
		problems = append(problems, "paths.state_dir: must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n  " + strings.Join(problems, "\n  "))
	}
	return nil
}
