package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"submux/internal/fileutil"
	"submux/internal/logging"
)

// lockFileName is the zero-byte lock marker inside each toolset directory.
// Only the OS-level exclusive lock on it matters; its content is irrelevant.
const lockFileName = ".provision.lock"

// bundledDirName is the toolset directory probed next to the application
// binary.
const bundledDirName = "tools"

// Manager provisions and locates toolsets. It is the only component that
// touches the network or mutates the cache.
type Manager struct {
	loader  *Loader
	logger  *slog.Logger
	client  httpDoer
	exePath func() (string, error)
}

// NewManager constructs a bundle manager.
func NewManager(loader *Loader, logger *slog.Logger) *Manager {
	return &Manager{
		loader:  loader,
		logger:  logging.NewComponentLogger(logger, "toolchain"),
		client:  http.DefaultClient,
		exePath: os.Executable,
	}
}

// WithHTTPClient replaces the HTTP client, primarily for tests.
func (m *Manager) WithHTTPClient(client httpDoer) *Manager {
	if client != nil {
		m.client = client
	}
	return m
}

// WithExecutablePath replaces the executable locator used for the bundled
// toolset probe, primarily for tests.
func (m *Manager) WithExecutablePath(fn func() (string, error)) *Manager {
	if fn != nil {
		m.exePath = fn
	}
	return m
}

// TryGetBundled looks for a toolset shipped next to the application binary.
// It returns nil when the manifest has no entry for the platform or any
// required executable is absent. No network access happens here.
func (m *Manager) TryGetBundled(platform string) (*BundleResult, error) {
	manifest, err := m.loader.Load()
	if err != nil {
		return nil, err
	}
	entry, ok := manifest.Platform(platform)
	if !ok {
		return nil, nil
	}

	exe, err := m.exePath()
	if err != nil {
		m.logger.Debug("cannot determine executable path for bundled probe", logging.Error(err))
		return nil, nil
	}
	base := filepath.Join(filepath.Dir(exe), bundledDirName)

	tools := map[string]string{}
	for _, family := range Families() {
		def := entry[family]
		for key, rel := range def.ExtractMap {
			path := filepath.Join(base, filepath.FromSlash(rel))
			if !fileutil.FileExists(path) {
				return nil, nil
			}
			tools[key] = path
		}
	}

	return &BundleResult{
		BaseDir:        base,
		Source:         SourceBundled,
		ToolsetVersion: manifest.ToolsetVersion,
		Tools:          tools,
	}, nil
}

// EnsureCached returns a valid cached toolset for the platform, provisioning
// it when permitted. It returns nil (without error) when the manifest has no
// entry for the platform, or when the cache is invalid and provisioning is
// disallowed.
//
// The fast path checks validity without taking the lock; on a miss the check
// repeats under the exclusive lock, closing the race between two processes
// starting provisioning simultaneously.
func (m *Manager) EnsureCached(ctx context.Context, platform string, opts ResolveOptions, force bool, report Reporter) (*BundleResult, error) {
	manifest, err := m.loader.Load()
	if err != nil {
		return nil, err
	}
	entry, ok := manifest.Platform(platform)
	if !ok {
		return nil, nil
	}

	dir, err := ToolsetRoot(platform, manifest.ToolsetVersion, opts.CacheDirOverride)
	if err != nil {
		return nil, err
	}

	if !force && validateToolset(dir, entry) {
		return cacheResult(dir, entry, manifest.ToolsetVersion, false), nil
	}
	if !opts.AllowProvisioning {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare toolset directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire toolset lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire toolset lock: not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release toolset lock", logging.Error(err))
		}
	}()

	// Another process may have finished provisioning while we waited.
	if !force && validateToolset(dir, entry) {
		return cacheResult(dir, entry, manifest.ToolsetVersion, false), nil
	}

	if opts.DryRun {
		m.logger.Info("dry run: would provision toolset",
			logging.String(logging.FieldPlatform, platform),
			logging.String(logging.FieldVersion, manifest.ToolsetVersion),
			logging.String("dir", dir),
		)
		return cacheResult(dir, entry, manifest.ToolsetVersion, true), nil
	}

	if err := m.provision(ctx, platform, manifest.ToolsetVersion, entry, dir, report); err != nil {
		return nil, err
	}
	return cacheResult(dir, entry, manifest.ToolsetVersion, false), nil
}

// provision runs the download → verify → extract → record-hashes pipeline
// into dir. The hash sidecar is written only after every family succeeded,
// so an interrupted run leaves the directory invalid and fully retryable.
func (m *Manager) provision(ctx context.Context, platform, version string, entry PlatformEntry, dir string, report Reporter) error {
	session := uuid.NewString()
	log := m.logger.With(
		logging.String(logging.FieldSessionID, session),
		logging.String(logging.FieldPlatform, platform),
		logging.String(logging.FieldVersion, version),
	)

	tmpDir, err := os.MkdirTemp(filepath.Dir(dir), tempDownloadDirName)
	if err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Warn("failed to remove download directory", logging.Error(err))
		}
	}()

	produced := make(map[string]string)

	for _, family := range Families() {
		def := entry[family]
		if err := m.provisionFamily(ctx, log, family, def, dir, tmpDir, report, produced); err != nil {
			return err
		}
	}

	sidecar := HashSidecar{Files: map[string]string{}}
	for rel := range produced {
		sum, err := fileutil.FileSHA256(filepath.Join(dir, rel))
		if err != nil {
			return fmt.Errorf("hash extracted file %s: %w", rel, err)
		}
		sidecar.Files[rel] = sum
	}
	if err := writeSidecar(dir, sidecar); err != nil {
		return err
	}

	log.Info("toolset provisioned", logging.Int("files", len(sidecar.Files)))
	return nil
}

func (m *Manager) provisionFamily(ctx context.Context, log *slog.Logger, family string, def ArchiveDef, dir, tmpDir string, report Reporter, produced map[string]string) error {
	log = log.With(logging.String(logging.FieldTool, family))

	archivePath := filepath.Join(tmpDir, family+"-"+filepath.Base(def.ArchiveURL))
	log.Info("downloading archive", logging.String("url", def.ArchiveURL))
	if err := m.downloadArchive(ctx, family, def.ArchiveURL, archivePath, report); err != nil {
		return err
	}

	checksumText, err := m.fetchChecksumSource(ctx, def.ChecksumURL)
	if err != nil {
		return err
	}
	expected, err := parseChecksum(checksumText, def.ChecksumEntry)
	if err != nil {
		return fmt.Errorf("checksum for %s: %w", family, err)
	}
	actual, err := fileutil.FileSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("hash downloaded archive: %w", err)
	}
	if actual != expected {
		return &IntegrityError{Tool: family, URL: def.ArchiveURL, Expected: expected, Actual: actual}
	}
	log.Debug("archive checksum verified", logging.String("sha256", actual))

	reader, err := openArchive(def.ArchiveType, archivePath)
	if err != nil {
		return fmt.Errorf("open archive for %s: %w", family, err)
	}
	defer reader.Close()

	keys := make([]string, 0, len(def.ExtractMap))
	for key := range def.ExtractMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := reader.Entries()
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extract %s: %w", family, err)
		}

		rel := def.ExtractMap[key]
		entryName, ok := findEntry(entries, filepath.Base(rel))
		if !ok {
			return &ExtractionError{Tool: family, FileKey: key, Archive: filepath.Base(def.ArchiveURL)}
		}

		dest := filepath.Join(dir, filepath.FromSlash(rel))
		if err := reader.Extract(entryName, dest); err != nil {
			return fmt.Errorf("extract %s from %s: %w", key, family, err)
		}
		if runtime.GOOS != "windows" {
			if err := os.Chmod(dest, 0o755); err != nil {
				return fmt.Errorf("chmod %s: %w", dest, err)
			}
		}
		produced[rel] = key

		if report != nil {
			report(Progress{
				Tool:        family,
				Stage:       StageExtract,
				FilesTotal:  len(keys),
				FilesDone:   i + 1,
				CurrentItem: rel,
			})
		}
	}

	return nil
}

// Clean recursively deletes the versioned toolset directory for the
// platform. A missing directory is a logged no-op.
func (m *Manager) Clean(platform, cacheDirOverride string) error {
	manifest, err := m.loader.Load()
	if err != nil {
		return err
	}
	dir, err := ToolsetRoot(platform, manifest.ToolsetVersion, cacheDirOverride)
	if err != nil {
		return err
	}
	if !fileutil.PathExists(dir) {
		m.logger.Info("no cached toolset to clean",
			logging.String(logging.FieldPlatform, platform),
			logging.String("dir", dir),
		)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean toolset directory: %w", err)
	}
	m.logger.Info("removed cached toolset",
		logging.String(logging.FieldPlatform, platform),
		logging.String("dir", dir),
	)
	return nil
}

// InstalledVersion detects the single installed toolset version for the
// platform: exactly one versioned cache subdirectory with a completed hash
// sidecar. Zero or multiple candidates yield "" — ambiguous state is never
// guessed.
func (m *Manager) InstalledVersion(platform, cacheDirOverride string) (string, error) {
	root, err := CacheRoot(cacheDirOverride)
	if err != nil {
		return "", err
	}
	platformDir := filepath.Join(root, platform)
	entries, err := os.ReadDir(platformDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("scan cache directory: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if SidecarComplete(filepath.Join(platformDir, entry.Name())) {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) != 1 {
		return "", nil
	}
	return candidates[0], nil
}

func cacheResult(dir string, entry PlatformEntry, version string, dryRun bool) *BundleResult {
	tools := map[string]string{}
	for _, family := range Families() {
		for key, rel := range entry[family].ExtractMap {
			tools[key] = filepath.Join(dir, filepath.FromSlash(rel))
		}
	}
	return &BundleResult{
		BaseDir:        dir,
		Source:         SourceCache,
		ToolsetVersion: version,
		Tools:          tools,
		DryRun:         dryRun,
	}
}
