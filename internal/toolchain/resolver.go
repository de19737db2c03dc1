package toolchain

import (
	"context"
	"log/slog"

	"submux/internal/fileutil"
	"submux/internal/logging"
)

// Resolver maps required tool keys to executable paths, combining explicit
// overrides, a bundled toolset, the managed cache, and the system PATH.
type Resolver struct {
	loader  *Loader
	manager *Manager
	logger  *slog.Logger
}

// NewResolver constructs a resolver on top of a manifest loader and bundle
// manager.
func NewResolver(loader *Loader, manager *Manager, logger *slog.Logger) *Resolver {
	return &Resolver{
		loader:  loader,
		manager: manager,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve produces a path for every required tool. Per tool the priority is
// explicit override, bundled toolset, managed cache, then the bare
// executable name for PATH lookup at spawn time. Bundled and cached lookups
// happen at most once per call regardless of tool count.
//
// A missing or invalid override path is logged and falls through to the
// remaining sources rather than failing the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, overrides Overrides, opts ResolveOptions, report Reporter) (*ToolResolution, error) {
	platform := RuntimeID(r.logger)

	manifest, err := r.loader.Load()
	if err != nil {
		return nil, err
	}
	_, hasEntry := manifest.Platform(platform)

	var bundled *BundleResult
	if opts.PreferBundled && hasEntry {
		bundled, err = r.manager.TryGetBundled(platform)
		if err != nil {
			r.logger.Warn("bundled toolset probe failed", logging.Error(err))
			bundled = nil
		}
	}

	var cached *BundleResult
	if hasEntry && HostSupported() && !opts.PreferPath {
		cached, err = r.manager.EnsureCached(ctx, platform, opts, false, report)
		if err != nil {
			return nil, err
		}
	}

	resolution := &ToolResolution{
		Platform:       platform,
		ToolsetVersion: manifest.ToolsetVersion,
		Tools:          map[string]PathResolution{},
	}

	for _, key := range RequiredTools() {
		resolution.Tools[key] = r.resolveTool(key, overrides, bundled, cached, opts.Verbose)
	}
	return resolution, nil
}

func (r *Resolver) resolveTool(key string, overrides Overrides, bundled, cached *BundleResult, verbose bool) PathResolution {
	if override, ok := overrides[key]; ok && override != "" {
		if fileutil.FileExists(override) {
			return r.logged(key, PathResolution{Path: override, Source: SourceOverride}, verbose)
		}
		r.logger.Warn("configured tool override does not exist, falling back",
			logging.String(logging.FieldTool, key),
			logging.String("path", override),
		)
	}

	if bundled != nil {
		if path, ok := bundled.Tools[key]; ok {
			return r.logged(key, PathResolution{Path: path, Source: SourceBundled}, verbose)
		}
	}

	if cached != nil && !cached.DryRun {
		if path, ok := cached.Tools[key]; ok {
			return r.logged(key, PathResolution{Path: path, Source: SourceCache}, verbose)
		}
	}

	return r.logged(key, PathResolution{Path: ExecutableName(key), Source: SourcePath}, verbose)
}

func (r *Resolver) logged(key string, res PathResolution, verbose bool) PathResolution {
	if verbose {
		r.logger.Info("resolved tool",
			logging.String(logging.FieldTool, key),
			logging.String(logging.FieldSource, string(res.Source)),
			logging.String("path", res.Path),
		)
	}
	return res
}
