package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"submux/internal/fileutil"
)

func TestFileSHA256KnownVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sum, err := fileutil.FileSHA256(path)
	if err != nil {
		t.Fatalf("FileSHA256 returned error: %v", err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if sum != want {
		t.Fatalf("unexpected digest: got %s want %s", sum, want)
	}
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := fileutil.WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestReadFileIfExistsMissing(t *testing.T) {
	data, ok, err := fileutil.ReadFileIfExists(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected missing file, got ok=%v data=%q", ok, data)
	}
}
