package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"submux/internal/config"
	"submux/internal/logging"
	"submux/internal/mediacmd"
	"submux/internal/startup"
	"submux/internal/toolchain"
)

// rootFlags are the persistent flag values shared by every command.
type rootFlags struct {
	config       string
	manifest     string
	toolsDir     string
	verbose      bool
	dryRun       bool
	noPrompt     bool
	preferSystem bool
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	chainOnce sync.Once
	loader    *toolchain.Loader
	manager   *toolchain.Manager
	resolver  *toolchain.Resolver
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		level := cfg.Logging.Level
		if c.flags.verbose {
			level = "debug"
		}
		logger, err := logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "submux.log")},
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) toolchainComponents() (*toolchain.Loader, *toolchain.Manager, *toolchain.Resolver) {
	c.chainOnce.Do(func() {
		logger := c.ensureLogger()
		c.loader = toolchain.NewLoader(strings.TrimSpace(c.flags.manifest), logger)
		c.manager = toolchain.NewManager(c.loader, logger)
		c.resolver = toolchain.NewResolver(c.loader, c.manager, logger)
	})
	return c.loader, c.manager, c.resolver
}

// resolveOptions folds config preferences and persistent flags into the
// options every toolchain call uses.
func (c *commandContext) resolveOptions(allowProvisioning bool) toolchain.ResolveOptions {
	opts := toolchain.ResolveOptions{
		AllowProvisioning: allowProvisioning,
		CacheDirOverride:  strings.TrimSpace(c.flags.toolsDir),
		DryRun:            c.flags.dryRun,
		Verbose:           c.flags.verbose,
	}
	if cfg, err := c.ensureConfig(); err == nil {
		opts.PreferBundled = cfg.Tools.PreferBundled
		opts.PreferPath = cfg.Tools.PreferSystem
		if opts.CacheDirOverride == "" {
			opts.CacheDirOverride = cfg.Paths.CacheDir
		}
	}
	if c.flags.preferSystem {
		opts.PreferPath = true
		opts.PreferBundled = false
	}
	return opts
}

func (c *commandContext) overrides() toolchain.Overrides {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	return cfg.ToolOverrides()
}

// resolveTools resolves all tool paths, provisioning the cache when needed
// outside dry-run mode.
func (c *commandContext) resolveTools(cmd *cobra.Command) (mediacmd.Tools, *toolchain.ToolResolution, error) {
	_, _, resolver := c.toolchainComponents()
	resolution, err := resolver.Resolve(cmd.Context(), c.overrides(), c.resolveOptions(true), c.progressReporter())
	if err != nil {
		return mediacmd.Tools{}, nil, err
	}
	return mediacmd.ToolsFromResolution(resolution), resolution, nil
}

// startupOptions derives the gate options from the effective configuration.
// A system-path preference, whether from the flag or the config file,
// disables the gate: tools deliberately left to PATH are not installable.
func (c *commandContext) startupOptions(cfg *config.Config) startup.Options {
	resolve := c.resolveOptions(false)
	return startup.Options{
		Disabled:         c.flags.noPrompt || c.flags.dryRun || resolve.PreferPath,
		AutoUpdate:       cfg.Startup.AutoUpdate,
		PromptOnStartup:  cfg.Startup.PromptOnStartup,
		PreferBundled:    resolve.PreferBundled,
		CheckInterval:    time24h(cfg.Startup.UpdateCheckIntervalHours),
		StatePath:        cfg.StatePath(),
		CacheDirOverride: resolve.CacheDirOverride,
	}
}

// runStartupGate runs the throttled interactive install/update check.
func (c *commandContext) runStartupGate(cmd *cobra.Command) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	loader, manager, resolver := c.toolchainComponents()
	coordinator := startup.NewCoordinator(resolver, manager, loader, c.ensureLogger())
	return coordinator.Run(cmd.Context(), c.startupOptions(cfg), c.progressReporter())
}

func time24h(hours int) time.Duration {
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
