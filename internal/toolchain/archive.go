package toolchain

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz"
)

// archiveEntry is one member of an archive.
type archiveEntry struct {
	name string
	dir  bool
}

// archiveReader abstracts the archive format behind entry listing and
// single-entry extraction, so provisioning logic stays format-agnostic.
type archiveReader interface {
	Entries() []archiveEntry
	Extract(name, destPath string) error
	Close() error
}

// openArchive returns a reader for the declared archive type.
func openArchive(archiveType, path string) (archiveReader, error) {
	switch strings.ToLower(strings.TrimSpace(archiveType)) {
	case "zip":
		return openZip(path)
	case "7z":
		return openSevenZip(path)
	case "tar.gz", "tgz":
		return openTar(path, compressionGzip)
	case "tar.xz", "txz":
		return openTar(path, compressionXz)
	default:
		return nil, fmt.Errorf("unsupported archive type %q", archiveType)
	}
}

// findEntry matches archive entries against a wanted file name using a
// case-insensitive path-suffix test, tolerating unknown nesting inside
// upstream archives.
func findEntry(entries []archiveEntry, want string) (string, bool) {
	needle := strings.ToLower(filepath.ToSlash(want))
	for _, entry := range entries {
		if entry.dir {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(entry.name, "\\", "/"))
		if name == needle || strings.HasSuffix(name, "/"+needle) {
			return entry.name, true
		}
	}
	return "", false
}

func writeEntry(r io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("prepare %s: %w", destPath, err)
	}
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return out.Close()
}

type zipArchive struct {
	rc *zip.ReadCloser
}

func openZip(path string) (*zipArchive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return &zipArchive{rc: rc}, nil
}

func (a *zipArchive) Entries() []archiveEntry {
	entries := make([]archiveEntry, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		entries = append(entries, archiveEntry{name: f.Name, dir: f.FileInfo().IsDir()})
	}
	return entries
}

func (a *zipArchive) Extract(name, destPath string) error {
	for _, f := range a.rc.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", name, err)
		}
		defer r.Close()
		return writeEntry(r, destPath)
	}
	return fmt.Errorf("zip entry %s not found", name)
}

func (a *zipArchive) Close() error { return a.rc.Close() }

type sevenZipArchive struct {
	rc *sevenzip.ReadCloser
}

func openSevenZip(path string) (*sevenZipArchive, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z: %w", err)
	}
	return &sevenZipArchive{rc: rc}, nil
}

func (a *sevenZipArchive) Entries() []archiveEntry {
	entries := make([]archiveEntry, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		entries = append(entries, archiveEntry{name: f.Name, dir: f.FileInfo().IsDir()})
	}
	return entries
}

func (a *sevenZipArchive) Extract(name, destPath string) error {
	for _, f := range a.rc.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("open 7z entry %s: %w", name, err)
		}
		defer r.Close()
		return writeEntry(r, destPath)
	}
	return fmt.Errorf("7z entry %s not found", name)
}

func (a *sevenZipArchive) Close() error { return a.rc.Close() }

type tarCompression int

const (
	compressionGzip tarCompression = iota
	compressionXz
)

// tarArchive scans the stream once at open time to list entries and rewinds
// by reopening the file for each extraction; tar has no random access.
type tarArchive struct {
	path        string
	compression tarCompression
	entries     []archiveEntry
}

func openTar(path string, compression tarCompression) (*tarArchive, error) {
	a := &tarArchive{path: path, compression: compression}

	err := a.scan(func(header *tar.Header, _ *tar.Reader) (bool, error) {
		a.entries = append(a.entries, archiveEntry{
			name: header.Name,
			dir:  header.Typeflag == tar.TypeDir,
		})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *tarArchive) Entries() []archiveEntry { return a.entries }

func (a *tarArchive) Extract(name, destPath string) error {
	found := false
	err := a.scan(func(header *tar.Header, tr *tar.Reader) (bool, error) {
		if header.Name != name || header.Typeflag == tar.TypeDir {
			return false, nil
		}
		found = true
		return true, writeEntry(tr, destPath)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("tar entry %s not found", name)
	}
	return nil
}

func (a *tarArchive) Close() error { return nil }

// scan walks the tar stream, invoking fn per header until fn asks to stop.
func (a *tarArchive) scan(fn func(*tar.Header, *tar.Reader) (bool, error)) error {
	file, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var stream io.Reader
	switch a.compression {
	case compressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		stream = gz
	case compressionXz:
		xr, err := xz.NewReader(file)
		if err != nil {
			return fmt.Errorf("xz reader: %w", err)
		}
		stream = xr
	default:
		return fmt.Errorf("unknown tar compression %d", a.compression)
	}

	tr := tar.NewReader(stream)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		stop, err := fn(header, tr)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}
