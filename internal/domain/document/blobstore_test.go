package document

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *BlobStore {
	t.Helper()
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore returned error: %v", err)
	}
	return store
}

func TestSaveGeneratesDistinctNames(t *testing.T) {
	store := newTestStore(t)

	name1, size1, err := store.Save(strings.NewReader("payload one"), "scan.pdf")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	name2, _, err := store.Save(strings.NewReader("payload two"), "scan.pdf")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if name1 == name2 {
		t.Fatalf("expected distinct stored names, got %s twice", name1)
	}
	if size1 != int64(len("payload one")) {
		t.Fatalf("expected size %d, got %d", len("payload one"), size1)
	}
	if !strings.HasSuffix(name1, ".pdf") {
		t.Fatalf("expected sanitized extension to survive, got %s", name1)
	}
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Save(bytes.NewReader(nil), "empty.txt")
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}

	blobs, err := store.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(blobs) != 0 {
		t.Fatalf("expected nothing on disk after rejected save, found %d blobs", len(blobs))
	}
}

func TestSaveDropsHostileExtension(t *testing.T) {
	store := newTestStore(t)

	name, _, err := store.Save(strings.NewReader("x"), "../../etc/passwd.d/evil.sh$")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if strings.ContainsAny(name, "/\\") {
		t.Fatalf("stored name contains separators: %s", name)
	}
	if !strings.HasSuffix(name, ".bin") {
		t.Fatalf("expected .bin fallback extension, got %s", name)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)

	name, _, err := store.Save(strings.NewReader("hello blob"), "note.txt")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	rc, err := store.Open(name)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(got) != "hello blob" {
		t.Fatalf("expected %q, got %q", "hello blob", string(got))
	}
}

func TestOpenMissingBlob(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open("no-such-blob.bin")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestOpenRejectsPathEscape(t *testing.T) {
	store := newTestStore(t)

	// plant a file just outside the root to prove it stays unreachable
	outside := filepath.Join(filepath.Dir(store.Root()), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	for _, name := range []string{
		"../secret.txt",
		"./../secret.txt",
		"a/../../secret.txt",
		"/etc/passwd",
		"",
		".",
		"..",
	} {
		if _, err := store.Open(name); !errors.Is(err, ErrPathEscape) {
			t.Fatalf("Open(%q): expected ErrPathEscape, got %v", name, err)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	name, _, err := store.Save(strings.NewReader("bye"), "x.txt")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := store.Remove(name); err != nil {
		t.Fatalf("first Remove returned error: %v", err)
	}
	if err := store.Remove(name); err != nil {
		t.Fatalf("second Remove returned error: %v", err)
	}
}
