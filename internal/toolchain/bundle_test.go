package toolchain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"submux/internal/fileutil"
	"submux/internal/logging"
	"submux/internal/testsupport"
)

const sumPlaceholder = "2222222222222222222222222222222222222222222222222222222222222222"

// provisionFixture wires a manifest, an HTTP server with real archive
// fixtures, and a manager around a per-test cache root.
type provisionFixture struct {
	manager *Manager
	opts    ResolveOptions
	server  *httptest.Server

	mu    sync.Mutex
	hits  map[string]int
	files map[string][]byte
}

func (f *provisionFixture) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.hits {
		total += n
	}
	return total
}

func (f *provisionFixture) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	body, ok := f.files[r.URL.Path]
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(body)
}

func newProvisionFixture(t *testing.T) *provisionFixture {
	t.Helper()

	f := &provisionFixture{
		hits:  map[string]int{},
		files: map[string][]byte{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)

	fixtureDir := t.TempDir()

	ffmpegArchive := filepath.Join(fixtureDir, "ffmpeg.tar.gz")
	testsupport.BuildTarGz(t, ffmpegArchive, map[string][]byte{
		"ffmpeg-build/bin/ffmpeg":  []byte("fake ffmpeg"),
		"ffmpeg-build/bin/ffprobe": []byte("fake ffprobe"),
	})
	mkvArchive := filepath.Join(fixtureDir, "mkvtoolnix.zip")
	testsupport.BuildZip(t, mkvArchive, map[string][]byte{
		"mkvtoolnix/mkvmerge":   []byte("fake mkvmerge"),
		"mkvtoolnix/mkvextract": []byte("fake mkvextract"),
	})

	ffmpegSum, err := fileutil.FileSHA256(ffmpegArchive)
	if err != nil {
		t.Fatalf("hash ffmpeg fixture: %v", err)
	}
	mkvSum, err := fileutil.FileSHA256(mkvArchive)
	if err != nil {
		t.Fatalf("hash mkvtoolnix fixture: %v", err)
	}

	ffmpegBytes, err := os.ReadFile(ffmpegArchive)
	if err != nil {
		t.Fatalf("read ffmpeg fixture: %v", err)
	}
	mkvBytes, err := os.ReadFile(mkvArchive)
	if err != nil {
		t.Fatalf("read mkvtoolnix fixture: %v", err)
	}

	f.files["/ffmpeg.tar.gz"] = ffmpegBytes
	f.files["/mkvtoolnix.zip"] = mkvBytes
	f.files["/ffmpeg.sha256"] = []byte(
		"0000000000000000000000000000000000000000000000000000000000000000  other.tar.gz\n" +
			ffmpegSum + "  ffmpeg.tar.gz\n")
	f.files["/mkvtoolnix.sha256"] = []byte(mkvSum + "\n")

	manifest := Manifest{
		ToolsetVersion: "2024.09.15",
		Platforms: map[string]PlatformEntry{
			PlatformLinuxX64: {
				FamilyFFmpeg: {
					ArchiveURL:    f.server.URL + "/ffmpeg.tar.gz",
					ChecksumURL:   f.server.URL + "/ffmpeg.sha256",
					ChecksumEntry: "ffmpeg.tar.gz",
					ArchiveType:   "tar.gz",
					ExtractMap:    map[string]string{ToolFFmpeg: "ffmpeg", ToolFFprobe: "ffprobe"},
				},
				FamilyMKVToolNix: {
					ArchiveURL:  f.server.URL + "/mkvtoolnix.zip",
					ChecksumURL: f.server.URL + "/mkvtoolnix.sha256",
					ArchiveType: "zip",
					ExtractMap:  map[string]string{ToolMkvmerge: "mkvmerge", ToolMkvextract: "mkvextract"},
				},
			},
		},
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	manifestPath := filepath.Join(fixtureDir, "manifest.json")
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	loader := NewLoader(manifestPath, logging.NewNop())
	f.manager = NewManager(loader, logging.NewNop())
	f.opts = ResolveOptions{
		AllowProvisioning: true,
		CacheDirOverride:  t.TempDir(),
	}
	return f
}

func TestEnsureCachedProvisions(t *testing.T) {
	f := newProvisionFixture(t)

	var stages []Stage
	result, err := f.manager.EnsureCached(context.Background(), PlatformLinuxX64, f.opts, false, func(p Progress) {
		stages = append(stages, p.Stage)
	})
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	if result == nil {
		t.Fatal("EnsureCached returned nil result")
	}
	if result.Source != SourceCache {
		t.Fatalf("source = %q, want %q", result.Source, SourceCache)
	}
	if result.ToolsetVersion != "2024.09.15" {
		t.Fatalf("toolset version = %q", result.ToolsetVersion)
	}

	for _, key := range RequiredTools() {
		path, ok := result.Tools[key]
		if !ok {
			t.Fatalf("result missing tool %s", key)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if runtime.GOOS != "windows" && info.Mode()&0o100 == 0 {
			t.Fatalf("%s is not executable: mode %v", path, info.Mode())
		}
	}

	if !fileutil.FileExists(filepath.Join(result.BaseDir, SidecarFileName)) {
		t.Fatal("hash sidecar was not written")
	}

	sawDownload, sawExtract := false, false
	for _, stage := range stages {
		switch stage {
		case StageDownload:
			sawDownload = true
		case StageExtract:
			sawExtract = true
		}
	}
	if !sawDownload || !sawExtract {
		t.Fatalf("progress stages seen: %v", stages)
	}

	// The download temp directory must not survive.
	entries, err := os.ReadDir(filepath.Dir(result.BaseDir))
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	for _, entry := range entries {
		if len(entry.Name()) >= len(tempDownloadDirName) && entry.Name()[:len(tempDownloadDirName)] == tempDownloadDirName {
			t.Fatalf("leftover download directory: %s", entry.Name())
		}
	}
}

func TestEnsureCachedSecondCallSkipsNetwork(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	if _, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil); err != nil {
		t.Fatalf("first EnsureCached: %v", err)
	}
	before := f.requestCount()

	result, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err != nil {
		t.Fatalf("second EnsureCached: %v", err)
	}
	if result == nil {
		t.Fatal("second EnsureCached returned nil")
	}
	if got := f.requestCount(); got != before {
		t.Fatalf("second call made %d network requests", got-before)
	}
}

func TestEnsureCachedRecoversFromMissingFile(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	result, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	target := result.Tools[ToolMkvmerge]
	if err := os.Remove(target); err != nil {
		t.Fatalf("remove %s: %v", target, err)
	}
	before := f.requestCount()

	result, err = f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached after corruption: %v", err)
	}
	if f.requestCount() == before {
		t.Fatal("corrupted cache was not re-provisioned")
	}
	if !fileutil.FileExists(result.Tools[ToolMkvmerge]) {
		t.Fatal("mkvmerge was not restored")
	}
}

func TestEnsureCachedRecoversFromTamperedFile(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	result, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	target := result.Tools[ToolFFmpeg]
	if err := os.WriteFile(target, []byte("tampered"), 0o755); err != nil {
		t.Fatalf("tamper %s: %v", target, err)
	}
	before := f.requestCount()

	if _, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil); err != nil {
		t.Fatalf("EnsureCached after tamper: %v", err)
	}
	if f.requestCount() == before {
		t.Fatal("tampered cache was not re-provisioned")
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if string(content) != "fake ffmpeg" {
		t.Fatalf("restored content = %q", content)
	}
}

func TestEnsureCachedIntegrityFailure(t *testing.T) {
	f := newProvisionFixture(t)

	f.mu.Lock()
	f.files["/mkvtoolnix.sha256"] = []byte("1111111111111111111111111111111111111111111111111111111111111111\n")
	f.mu.Unlock()

	_, err := f.manager.EnsureCached(context.Background(), PlatformLinuxX64, f.opts, false, nil)
	var integrityErr *IntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("error = %v, want *IntegrityError", err)
	}
	if integrityErr.Tool != FamilyMKVToolNix {
		t.Fatalf("integrity error tool = %q", integrityErr.Tool)
	}

	// A failed run must leave the cache invalid so the next call retries.
	dir, err := ToolsetRoot(PlatformLinuxX64, "2024.09.15", f.opts.CacheDirOverride)
	if err != nil {
		t.Fatalf("ToolsetRoot: %v", err)
	}
	if fileutil.FileExists(filepath.Join(dir, SidecarFileName)) {
		t.Fatal("sidecar written despite integrity failure")
	}
}

func TestEnsureCachedDryRun(t *testing.T) {
	f := newProvisionFixture(t)
	opts := f.opts
	opts.DryRun = true

	result, err := f.manager.EnsureCached(context.Background(), PlatformLinuxX64, opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached dry run: %v", err)
	}
	if result == nil || !result.DryRun {
		t.Fatalf("result = %+v, want dry-run placeholder", result)
	}
	// The manifest override is a local file, so any hit means a download.
	if got := f.requestCount(); got != 0 {
		t.Fatalf("dry run made %d network requests", got)
	}
	if fileutil.FileExists(filepath.Join(result.BaseDir, SidecarFileName)) {
		t.Fatal("dry run wrote a sidecar")
	}
}

func TestEnsureCachedProvisioningDisallowed(t *testing.T) {
	f := newProvisionFixture(t)
	opts := f.opts
	opts.AllowProvisioning = false

	result, err := f.manager.EnsureCached(context.Background(), PlatformLinuxX64, opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
	if got := f.requestCount(); got != 0 {
		t.Fatalf("made %d network requests with provisioning disallowed", got)
	}
}

func TestEnsureCachedUnknownPlatform(t *testing.T) {
	f := newProvisionFixture(t)

	result, err := f.manager.EnsureCached(context.Background(), "plan9-386", f.opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for unknown platform, got %+v", result)
	}
}

func TestEnsureCachedForceReprovisions(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	if _, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil); err != nil {
		t.Fatalf("first EnsureCached: %v", err)
	}
	before := f.requestCount()

	if _, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, true, nil); err != nil {
		t.Fatalf("forced EnsureCached: %v", err)
	}
	if f.requestCount() == before {
		t.Fatal("force did not re-provision a valid cache")
	}
}

func TestClean(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	result, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	if err := f.manager.Clean(PlatformLinuxX64, f.opts.CacheDirOverride); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if fileutil.PathExists(result.BaseDir) {
		t.Fatal("toolset directory survived Clean")
	}
	// Cleaning an absent toolset is a no-op.
	if err := f.manager.Clean(PlatformLinuxX64, f.opts.CacheDirOverride); err != nil {
		t.Fatalf("second Clean: %v", err)
	}
}

func TestInstalledVersion(t *testing.T) {
	f := newProvisionFixture(t)
	ctx := context.Background()

	version, err := f.manager.InstalledVersion(PlatformLinuxX64, f.opts.CacheDirOverride)
	if err != nil {
		t.Fatalf("InstalledVersion on empty cache: %v", err)
	}
	if version != "" {
		t.Fatalf("empty cache reported version %q", version)
	}

	if _, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil); err != nil {
		t.Fatalf("EnsureCached: %v", err)
	}
	version, err = f.manager.InstalledVersion(PlatformLinuxX64, f.opts.CacheDirOverride)
	if err != nil {
		t.Fatalf("InstalledVersion: %v", err)
	}
	if version != "2024.09.15" {
		t.Fatalf("InstalledVersion = %q, want 2024.09.15", version)
	}

	// A second completed version makes the answer ambiguous.
	otherDir, err := ToolsetRoot(PlatformLinuxX64, "2025.01.01", f.opts.CacheDirOverride)
	if err != nil {
		t.Fatalf("ToolsetRoot: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := writeSidecar(otherDir, HashSidecar{Files: map[string]string{"ffmpeg": sumPlaceholder}}); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	version, err = f.manager.InstalledVersion(PlatformLinuxX64, f.opts.CacheDirOverride)
	if err != nil {
		t.Fatalf("InstalledVersion: %v", err)
	}
	if version != "" {
		t.Fatalf("ambiguous cache reported version %q", version)
	}
}

func TestTryGetBundled(t *testing.T) {
	f := newProvisionFixture(t)

	exeDir := t.TempDir()
	exe := filepath.Join(exeDir, "submux")
	testsupport.WriteExecutable(t, exe, []byte("app"))
	f.manager.WithExecutablePath(func() (string, error) { return exe, nil })

	result, err := f.manager.TryGetBundled(PlatformLinuxX64)
	if err != nil {
		t.Fatalf("TryGetBundled: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil without bundled tools, got %+v", result)
	}

	for _, key := range RequiredTools() {
		testsupport.WriteExecutable(t, filepath.Join(exeDir, "tools", key), []byte("tool"))
	}
	result, err = f.manager.TryGetBundled(PlatformLinuxX64)
	if err != nil {
		t.Fatalf("TryGetBundled: %v", err)
	}
	if result == nil {
		t.Fatal("bundled toolset not detected")
	}
	if result.Source != SourceBundled {
		t.Fatalf("source = %q, want %q", result.Source, SourceBundled)
	}
	for _, key := range RequiredTools() {
		want := filepath.Join(exeDir, "tools", key)
		if result.Tools[key] != want {
			t.Fatalf("tool %s = %q, want %q", key, result.Tools[key], want)
		}
	}
}

func TestEnsureCachedHonorsContextCancellation(t *testing.T) {
	f := newProvisionFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.manager.EnsureCached(ctx, PlatformLinuxX64, f.opts, false, nil)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
