package toolchain

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"submux/internal/logging"
	"submux/internal/testsupport"
)

func newResolver(f *provisionFixture) *Resolver {
	return NewResolver(f.manager.loader, f.manager, logging.NewNop())
}

func TestResolveProvisionsOnceForAllTools(t *testing.T) {
	f := newProvisionFixture(t)
	resolver := newResolver(f)

	resolution, err := resolver.Resolve(context.Background(), nil, f.opts, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for _, key := range RequiredTools() {
		res, ok := resolution.Tools[key]
		if !ok {
			t.Fatalf("resolution missing %s", key)
		}
		if res.Source != SourceCache {
			t.Fatalf("%s source = %q, want %q", key, res.Source, SourceCache)
		}
		if !filepath.IsAbs(res.Path) {
			t.Fatalf("%s path %q is not absolute", key, res.Path)
		}
	}

	// One provisioning run: two archives plus two checksum documents.
	if got := f.requestCount(); got != 4 {
		t.Fatalf("request count = %d, want 4", got)
	}
}

func TestResolveOverrideTakesPrecedence(t *testing.T) {
	f := newProvisionFixture(t)
	resolver := newResolver(f)

	override := filepath.Join(t.TempDir(), "custom-mkvmerge")
	testsupport.WriteExecutable(t, override, []byte("custom"))

	resolution, err := resolver.Resolve(context.Background(), Overrides{ToolMkvmerge: override}, f.opts, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	res := resolution.Tools[ToolMkvmerge]
	if res.Source != SourceOverride || res.Path != override {
		t.Fatalf("mkvmerge = %+v, want override %q", res, override)
	}
	if resolution.Tools[ToolFFmpeg].Source != SourceCache {
		t.Fatalf("ffmpeg source = %q, want cache", resolution.Tools[ToolFFmpeg].Source)
	}
}

func TestResolveMissingOverrideFallsThrough(t *testing.T) {
	f := newProvisionFixture(t)
	resolver := newResolver(f)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	resolution, err := resolver.Resolve(context.Background(), Overrides{ToolFFmpeg: missing}, f.opts, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	res := resolution.Tools[ToolFFmpeg]
	if res.Source != SourceCache {
		t.Fatalf("ffmpeg source = %q, want cache fallback", res.Source)
	}
	if res.Path == missing {
		t.Fatal("nonexistent override path was resolved")
	}
}

func TestResolvePreferPathSkipsCache(t *testing.T) {
	f := newProvisionFixture(t)
	resolver := newResolver(f)
	opts := f.opts
	opts.PreferPath = true

	resolution, err := resolver.Resolve(context.Background(), nil, opts, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, key := range RequiredTools() {
		res := resolution.Tools[key]
		if res.Source != SourcePath {
			t.Fatalf("%s source = %q, want %q", key, res.Source, SourcePath)
		}
		if res.Path != ExecutableName(key) {
			t.Fatalf("%s path = %q, want bare name", key, res.Path)
		}
	}
	if got := f.requestCount(); got != 0 {
		t.Fatalf("prefer-path made %d network requests", got)
	}
}

func TestResolvePreferBundled(t *testing.T) {
	f := newProvisionFixture(t)
	resolver := newResolver(f)

	exeDir := t.TempDir()
	exe := filepath.Join(exeDir, "submux")
	testsupport.WriteExecutable(t, exe, []byte("app"))
	for _, key := range RequiredTools() {
		testsupport.WriteExecutable(t, filepath.Join(exeDir, "tools", key), []byte("tool"))
	}
	f.manager.WithExecutablePath(func() (string, error) { return exe, nil })

	opts := f.opts
	opts.PreferBundled = true
	opts.AllowProvisioning = false

	resolution, err := resolver.Resolve(context.Background(), nil, opts, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, key := range RequiredTools() {
		if resolution.Tools[key].Source != SourceBundled {
			t.Fatalf("%s source = %q, want %q", key, resolution.Tools[key].Source, SourceBundled)
		}
	}
	if got := f.requestCount(); got != 0 {
		t.Fatalf("bundled resolution made %d network requests", got)
	}
}

func TestResolveNoManifestEntryUsesPath(t *testing.T) {
	manifest := Manifest{
		ToolsetVersion: "2024.09.15",
		Platforms: map[string]PlatformEntry{
			"darwin-arm64": {
				FamilyFFmpeg: {
					ArchiveURL:  "https://example.com/ffmpeg.tar.gz",
					ChecksumURL: "https://example.com/ffmpeg.sha256",
					ArchiveType: "tar.gz",
					ExtractMap:  map[string]string{ToolFFmpeg: "ffmpeg", ToolFFprobe: "ffprobe"},
				},
				FamilyMKVToolNix: {
					ArchiveURL:  "https://example.com/mkvtoolnix.zip",
					ChecksumURL: "https://example.com/mkvtoolnix.sha256",
					ArchiveType: "zip",
					ExtractMap:  map[string]string{ToolMkvmerge: "mkvmerge", ToolMkvextract: "mkvextract"},
				},
			},
		},
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	loader := NewLoader(path, logging.NewNop())
	manager := NewManager(loader, logging.NewNop())
	resolver := NewResolver(loader, manager, logging.NewNop())

	resolution, err := resolver.Resolve(context.Background(), nil, ResolveOptions{AllowProvisioning: true, CacheDirOverride: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, key := range RequiredTools() {
		if resolution.Tools[key].Source != SourcePath {
			t.Fatalf("%s source = %q, want %q", key, resolution.Tools[key].Source, SourcePath)
		}
	}
}
