package toolchain

// Source identifies where a resolved tool path came from.
type Source string

const (
	// SourceOverride is an explicit caller-supplied path.
	SourceOverride Source = "override"
	// SourceBundled is a toolset shipped next to the application binary.
	SourceBundled Source = "bundled"
	// SourceCache is the managed, provisioned cache.
	SourceCache Source = "cache"
	// SourcePath is a bare executable name deferred to PATH lookup at
	// launch time.
	SourcePath Source = "path"
)

// ResolveOptions controls resolution and provisioning behaviour.
type ResolveOptions struct {
	// AllowProvisioning permits network provisioning when the cache is
	// missing or invalid. When false, only an already-valid cache is used.
	AllowProvisioning bool
	// PreferBundled consults a toolset shipped next to the binary before
	// the cache.
	PreferBundled bool
	// PreferPath skips bundled and cache sources entirely.
	PreferPath bool
	// CacheDirOverride replaces the cache root for this invocation.
	CacheDirOverride string
	// DryRun stops provisioning before any network access and returns a
	// descriptive placeholder.
	DryRun bool
	// Verbose logs the resolved source and path per tool.
	Verbose bool
}

// Overrides carries advisory per-tool path overrides keyed by tool file key.
type Overrides map[string]string

// PathResolution is one tool's resolved path and its source.
type PathResolution struct {
	Path   string
	Source Source
}

// ToolResolution is the result of a Resolve call. It is computed fresh on
// every call; cache state can change between invocations.
type ToolResolution struct {
	Platform       string
	ToolsetVersion string
	Tools          map[string]PathResolution
}

// Tool returns the resolved path for a tool file key, falling back to the
// bare name when the key is unknown.
func (r *ToolResolution) Tool(key string) string {
	if r == nil {
		return key
	}
	if res, ok := r.Tools[key]; ok {
		return res.Path
	}
	return key
}

// BundleResult describes a located or provisioned toolset directory.
type BundleResult struct {
	BaseDir        string
	Source         Source
	ToolsetVersion string
	// Tools maps tool file keys to absolute executable paths.
	Tools map[string]string
	// DryRun marks a descriptive placeholder produced without touching
	// the network; the paths it names may not exist yet.
	DryRun bool
}
