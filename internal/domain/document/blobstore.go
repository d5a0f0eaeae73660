package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore writes raw payloads under a single managed root directory.
// Stored names are generated, never derived from caller filenames, so the
// store cannot be addressed with user-controlled paths.
type BlobStore struct {
	root string // absolute
}

// BlobInfo describes one stored payload, for reconciliation sweeps.
type BlobInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

func NewBlobStore(root string) (*BlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &BlobStore{root: abs}, nil
}

func (s *BlobStore) Root() string { return s.root }

// Save writes the payload under a fresh uuid-based name and returns that
// name with the byte count written. The extension of originalName is kept
// (sanitized) so downloads keep a usable suffix; everything else about the
// original name is metadata only. An empty payload is rejected and nothing
// is left on disk.
func (s *BlobStore) Save(r io.Reader, originalName string) (string, int64, error) {
	storedName := uuid.New().String() + safeExt(originalName)

	path := filepath.Join(s.root, storedName)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob %s: %w", storedName, err)
	}

	size, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write blob %s: %w", storedName, err)
	}
	if size == 0 {
		_ = os.Remove(path)
		return "", 0, ErrEmptyFile
	}

	return storedName, size, nil
}

// Open returns a reader over the blob. Names that resolve outside the root
// fail with ErrPathEscape even though stored names are store-generated.
func (s *BlobStore) Open(storedName string) (io.ReadCloser, error) {
	path, err := s.resolve(storedName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", storedName, err)
	}
	return f, nil
}

// Remove deletes the blob if present. Absence is not an error.
func (s *BlobStore) Remove(storedName string) error {
	path, err := s.resolve(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob %s: %w", storedName, err)
	}
	return nil
}

// List enumerates every blob under the root. Used by the orphan sweep
// only; callers never address blobs by listing.
func (s *BlobStore) List() ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list storage root: %w", err)
	}
	blobs := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		blobs = append(blobs, BlobInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return blobs, nil
}

// resolve maps a stored name to an absolute path strictly inside the root.
func (s *BlobStore) resolve(storedName string) (string, error) {
	if storedName == "" || filepath.IsAbs(storedName) {
		return "", ErrPathEscape
	}
	path := filepath.Join(s.root, filepath.Clean(storedName))
	if path == s.root || !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	// no subdirectories: a name with a separator left after Clean is not ours
	if filepath.Dir(path) != s.root {
		return "", ErrPathEscape
	}
	return path, nil
}

// safeExt extracts a usable extension from the caller-supplied filename.
// Anything other than a short alphanumeric suffix is dropped.
func safeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." || len(ext) > 10 {
		return ".bin"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".bin"
		}
	}
	return ext
}
