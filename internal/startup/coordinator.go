package startup

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"submux/internal/logging"
	"submux/internal/toolchain"
)

const defaultCheckInterval = 24 * time.Hour

// Options controls one startup gate run.
type Options struct {
	// Disabled skips the gate entirely (--no-prompt or equivalent).
	Disabled bool
	// Force bypasses the update-check throttle.
	Force bool
	// AutoUpdate enables the toolset update check.
	AutoUpdate bool
	// PromptOnStartup enables interactive prompts at all.
	PromptOnStartup bool
	// PreferBundled mirrors the resolver preference for a toolset shipped
	// next to the binary.
	PreferBundled bool
	// CheckInterval throttles update checks; non-positive means 24h.
	CheckInterval time.Duration
	// StatePath locates the persisted startup state file.
	StatePath string
	// CacheDirOverride replaces the toolchain cache root.
	CacheDirOverride string
}

// Coordinator runs the startup gate against the toolchain.
type Coordinator struct {
	resolver *toolchain.Resolver
	manager  *toolchain.Manager
	loader   *toolchain.Loader
	logger   *slog.Logger

	prompter      Prompter
	isInteractive func() bool
	lookPath      func(string) (string, error)
	now           func() time.Time
}

// NewCoordinator constructs a startup coordinator with terminal defaults.
func NewCoordinator(resolver *toolchain.Resolver, manager *toolchain.Manager, loader *toolchain.Loader, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		resolver:      resolver,
		manager:       manager,
		loader:        loader,
		logger:        logging.NewComponentLogger(logger, "startup"),
		prompter:      NewTerminalPrompter(),
		isInteractive: StdioInteractive,
		lookPath:      exec.LookPath,
		now:           time.Now,
	}
}

// WithPrompter replaces the prompter, primarily for tests.
func (c *Coordinator) WithPrompter(p Prompter) *Coordinator {
	if p != nil {
		c.prompter = p
	}
	return c
}

// WithInteractiveCheck replaces terminal detection, primarily for tests.
func (c *Coordinator) WithInteractiveCheck(fn func() bool) *Coordinator {
	if fn != nil {
		c.isInteractive = fn
	}
	return c
}

// WithLookPath replaces PATH lookup, primarily for tests.
func (c *Coordinator) WithLookPath(fn func(string) (string, error)) *Coordinator {
	if fn != nil {
		c.lookPath = fn
	}
	return c
}

// WithClock replaces the time source, primarily for tests.
func (c *Coordinator) WithClock(fn func() time.Time) *Coordinator {
	if fn != nil {
		c.now = fn
	}
	return c
}

// Run executes the startup gate. It is advisory: a declined prompt or an
// unsupported environment is never an error, and command execution proceeds
// regardless of the outcome.
func (c *Coordinator) Run(ctx context.Context, opts Options, report toolchain.Reporter) error {
	if opts.Disabled || !opts.PromptOnStartup {
		return nil
	}
	if !c.isInteractive() {
		c.logger.Debug("skipping startup gate: not an interactive session")
		return nil
	}
	if !toolchain.HostSupported() {
		c.logger.Debug("skipping startup gate: host platform unsupported")
		return nil
	}

	manifest, err := c.loader.Load()
	if err != nil {
		return err
	}
	platform := toolchain.RuntimeID(c.logger)
	if _, ok := manifest.Platform(platform); !ok {
		c.logger.Debug("skipping startup gate: no manifest entry for platform",
			logging.String(logging.FieldPlatform, platform))
		return nil
	}

	resolveOpts := toolchain.ResolveOptions{
		AllowProvisioning: false,
		PreferBundled:     opts.PreferBundled,
		CacheDirOverride:  opts.CacheDirOverride,
	}

	if err := c.offerInstall(ctx, resolveOpts, report); err != nil {
		return err
	}
	if opts.AutoUpdate {
		if err := c.offerUpdate(ctx, manifest, platform, opts, report); err != nil {
			return err
		}
	}
	return nil
}

// offerInstall prompts to provision when any required tool would otherwise
// fall back to a PATH lookup that cannot succeed.
func (c *Coordinator) offerInstall(ctx context.Context, resolveOpts toolchain.ResolveOptions, report toolchain.Reporter) error {
	resolution, err := c.resolver.Resolve(ctx, nil, resolveOpts, nil)
	if err != nil {
		return err
	}

	var missing []string
	for _, key := range toolchain.RequiredTools() {
		res := resolution.Tools[key]
		if res.Source != toolchain.SourcePath {
			continue
		}
		if _, err := c.lookPath(res.Path); err != nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	c.logger.Info("required tools are not available", logging.Any("missing", missing))
	agreed, err := c.prompter.Confirm("Some required tools are missing. Download and install the managed toolset now?")
	if err != nil {
		return err
	}
	if !agreed {
		c.logger.Info("user declined toolset installation")
		return nil
	}

	provisionOpts := resolveOpts
	provisionOpts.AllowProvisioning = true
	_, err = c.manager.EnsureCached(ctx, resolution.Platform, provisionOpts, false, report)
	return err
}

// offerUpdate prompts to re-provision when the manifest names a newer
// toolset than the one installed. The check is throttled; the check
// timestamp is persisted as soon as the scan runs, so an up-to-date
// toolset or a killed prompt still counts as a check.
func (c *Coordinator) offerUpdate(ctx context.Context, manifest *toolchain.Manifest, platform string, opts Options, report toolchain.Reporter) error {
	interval := opts.CheckInterval
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	state := LoadState(opts.StatePath)
	now := c.now()
	if !opts.Force && now.Sub(state.LastCheckedUTC) < interval {
		c.logger.Debug("skipping update check: throttled",
			logging.Any("last_checked", state.LastCheckedUTC))
		return nil
	}

	installed, err := c.manager.InstalledVersion(platform, opts.CacheDirOverride)
	if err != nil {
		return err
	}

	// The check ran; record it now so the throttle holds even when the
	// outcome is "nothing to do" or the prompt never completes.
	state.LastCheckedUTC = now.UTC()
	if err := SaveState(opts.StatePath, state); err != nil {
		c.logger.Warn("failed to persist startup state", logging.Error(err))
	}

	if installed == "" {
		// Nothing installed, or an ambiguous multi-version cache.
		c.logger.Debug("skipping update check: no single installed toolset version")
		return nil
	}
	if installed == manifest.ToolsetVersion || state.LastInstalledVersionSeen == manifest.ToolsetVersion {
		return nil
	}

	c.logger.Info("toolset update available",
		logging.String("installed", installed),
		logging.String("available", manifest.ToolsetVersion))
	agreed, err := c.prompter.Confirm("A newer toolset version is available. Update now?")
	if err != nil {
		return err
	}
	if !agreed {
		c.logger.Info("user declined toolset update")
		return nil
	}

	provisionOpts := toolchain.ResolveOptions{
		AllowProvisioning: true,
		CacheDirOverride:  opts.CacheDirOverride,
	}
	if _, err := c.manager.EnsureCached(ctx, platform, provisionOpts, true, report); err != nil {
		return err
	}

	state.LastInstalledVersionSeen = manifest.ToolsetVersion
	if err := SaveState(opts.StatePath, state); err != nil {
		c.logger.Warn("failed to persist startup state", logging.Error(err))
	}
	return nil
}
