package config

const (
	defaultLogDir                   = "~/.local/share/submux/logs"
	defaultStateDir                 = "~/.local/share/submux"
	defaultLogLevel                 = "info"
	defaultLogFormat                = "console"
	defaultUpdateCheckIntervalHours = 24
)

// Default returns a Config populated with repository defaults. The cache
// directory is left empty so the toolchain engine applies its own
// override > environment > per-user layering.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Startup: Startup{
			PromptOnStartup:          true,
			AutoUpdate:               true,
			UpdateCheckIntervalHours: defaultUpdateCheckIntervalHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
