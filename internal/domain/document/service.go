package document

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"staffdocs/internal/logger"
)

// Service orchestrates the blob store and the catalog. The write path
// always stores bytes first and touches the catalog only after the blob is
// fully on disk: a failed catalog write can orphan a blob (reclaimed by
// the sweeper) but never leaves a record pointing at a missing file.
type Service struct {
	repo        Repository
	blobs       *BlobStore
	publicBase  string
	maxFileSize int64

	mu sync.Mutex
	// one mutex per (owner, category) pair ever written, never evicted;
	// bounded by pair cardinality, which stays small for this catalog
	keyLocks map[string]*sync.Mutex
}

// UploadInput is one payload of a batch ingestion.
type UploadInput struct {
	Data         io.Reader
	OriginalName string
	MediaType    string
}

// Download is a resolved blob ready to serve. Content must be closed by
// the caller.
type Download struct {
	Content     io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

func NewService(repo Repository, blobs *BlobStore, publicBase string, maxFileSize int64) *Service {
	return &Service{
		repo:        repo,
		blobs:       blobs,
		publicBase:  strings.TrimRight(publicBase, "/"),
		maxFileSize: maxFileSize,
		keyLocks:    make(map[string]*sync.Mutex),
	}
}

// Upload is the create-or-replace path: one current document per
// (owner, category). When a record for the pair exists it is rewritten in
// place to point at the new blob; the prior blob is left behind for the
// sweeper, never unlinked on the write path.
func (s *Service) Upload(ctx context.Context, ownerID, category string, in UploadInput) (*Document, error) {
	cat := NormalizeCategory(category)

	storedName, size, err := s.storeBlob(in)
	if err != nil {
		return nil, err
	}

	// serialize check-then-write per (owner, category) so two concurrent
	// uploads for the same pair cannot both insert
	unlock := s.lockKey(ownerID, cat)
	defer unlock()

	existing, err := s.repo.ListByOwnerAndCategory(ctx, ownerID, cat)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		doc := &existing[0] // lowest id wins on ties
		old := doc.StoredName
		doc.StoredName = storedName
		doc.OriginalName = in.OriginalName
		doc.MediaType = in.MediaType
		doc.SizeBytes = size
		doc.DownloadRef = s.downloadRef(storedName)
		if err := s.repo.Update(ctx, doc); err != nil {
			return nil, err
		}
		logger.WithField("stored_name", old).Debugf("document %d superseded, old blob orphaned", doc.ID)
		return doc, nil
	}

	doc := &Document{
		OwnerID:      ownerID,
		Category:     cat,
		StoredName:   storedName,
		OriginalName: in.OriginalName,
		MediaType:    in.MediaType,
		SizeBytes:    size,
		DownloadRef:  s.downloadRef(storedName),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UploadBatch stores every payload and always inserts a new record,
// bypassing the pair check. Multiple current documents per (owner,
// category) can coexist through this path; that mirrors the single/batch
// split of the upstream HR system and is deliberately not unified.
func (s *Service) UploadBatch(ctx context.Context, ownerID, category string, inputs []UploadInput) ([]Document, error) {
	cat := NormalizeCategory(category)

	docs := make([]Document, 0, len(inputs))
	for _, in := range inputs {
		storedName, size, err := s.storeBlob(in)
		if err != nil {
			return docs, err
		}

		doc := Document{
			OwnerID:      ownerID,
			Category:     cat,
			StoredName:   storedName,
			OriginalName: in.OriginalName,
			MediaType:    in.MediaType,
			SizeBytes:    size,
			DownloadRef:  s.downloadRef(storedName),
		}
		if err := s.repo.Create(ctx, &doc); err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Document, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]Document, error) {
	return s.repo.ListByCategory(ctx, NormalizeCategory(category))
}

func (s *Service) ListByOwnerAndCategory(ctx context.Context, ownerID, category string) ([]Document, error) {
	return s.repo.ListByOwnerAndCategory(ctx, ownerID, NormalizeCategory(category))
}

// OpenByStoredName serves a blob directly by its stored name. The stored
// name doubles as the suggested filename; it is store-generated and safe.
func (s *Service) OpenByStoredName(storedName string) (*Download, error) {
	rc, err := s.blobs.Open(storedName)
	if err != nil {
		return nil, err
	}
	return &Download{
		Content:     rc,
		FileName:    storedName,
		ContentType: s.sniffContentType(rc, storedName),
		Size:        blobSize(rc),
	}, nil
}

// OpenByID resolves a record to its content. A record whose blob is gone
// surfaces as ErrBlobMissing, not a plain not-found.
func (s *Service) OpenByID(ctx context.Context, id int64) (*Download, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openRecord(doc)
}

// OpenByOwnerAndCategory resolves the first (lowest id) record for the
// pair. Callers that need every match use the listing endpoints instead.
func (s *Service) OpenByOwnerAndCategory(ctx context.Context, ownerID, category string) (*Download, error) {
	docs, err := s.repo.ListByOwnerAndCategory(ctx, ownerID, NormalizeCategory(category))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}
	return s.openRecord(&docs[0])
}

// Delete removes the record and then releases its blob. Deleting an
// unknown id is an error, unlike blob removal. A failed blob unlink leaves
// an orphan for the sweeper rather than resurrecting the record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(doc.StoredName); err != nil {
		logger.Warnf("document %d deleted but blob %s not released: %v", id, doc.StoredName, err)
	}
	return nil
}

// Metadata is the full mutable field set of a record.
type Metadata struct {
	OwnerID      string `json:"owner_id"`
	Category     string `json:"category"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	MediaType    string `json:"media_type"`
	SizeBytes    int64  `json:"size_bytes"`
	DownloadRef  string `json:"download_ref"`
}

// ReplaceMetadata overwrites every mutable field of an existing record
// without touching the blob store. This can desynchronize the record from
// the stored bytes; it exists for operator repair, not for normal writes.
func (s *Service) ReplaceMetadata(ctx context.Context, id int64, m Metadata) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.OwnerID = m.OwnerID
	doc.Category = NormalizeCategory(m.Category)
	doc.StoredName = m.StoredName
	doc.OriginalName = m.OriginalName
	doc.MediaType = m.MediaType
	doc.SizeBytes = m.SizeBytes
	doc.DownloadRef = m.DownloadRef
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// NormalizeCategory is the canonical case form used for storage and
// lookups.
func NormalizeCategory(category string) string {
	return strings.ToUpper(strings.TrimSpace(category))
}

func (s *Service) storeBlob(in UploadInput) (string, int64, error) {
	storedName, size, err := s.blobs.Save(in.Data, in.OriginalName)
	if err != nil {
		return "", 0, err
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		_ = s.blobs.Remove(storedName)
		return "", 0, ErrFileTooLarge
	}
	return storedName, size, nil
}

func (s *Service) openRecord(doc *Document) (*Download, error) {
	rc, err := s.blobs.Open(doc.StoredName)
	if err != nil {
		if err == ErrBlobNotFound {
			logger.WithField("stored_name", doc.StoredName).
				Errorf("document %d references a missing blob", doc.ID)
			return nil, ErrBlobMissing
		}
		return nil, err
	}
	return &Download{
		Content:     rc,
		FileName:    SanitizeFileName(doc.OriginalName),
		ContentType: s.sniffContentType(rc, doc.StoredName),
		Size:        blobSize(rc),
	}, nil
}

// blobSize reads the size from the open file rather than the record, so a
// stale metadata row cannot produce a wrong Content-Length.
func blobSize(rc io.ReadCloser) int64 {
	if f, ok := rc.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			return fi.Size()
		}
	}
	return -1
}

// sniffContentType derives the served content type from the stored bytes,
// falling back to the extension and then octet-stream. The caller-declared
// media type is advisory only and never trusted for serving.
func (s *Service) sniffContentType(rc io.ReadCloser, storedName string) string {
	if seeker, ok := rc.(io.ReadSeeker); ok {
		buf := make([]byte, 512)
		n, _ := seeker.Read(buf)
		_, _ = seeker.Seek(0, io.SeekStart)
		if n > 0 {
			detected := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
			if detected != "application/octet-stream" {
				return detected
			}
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(storedName)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func (s *Service) downloadRef(storedName string) string {
	return s.publicBase + "/files/" + storedName
}

func (s *Service) lockKey(ownerID, category string) func() {
	key := ownerID + "\x00" + category
	s.mu.Lock()
	l, ok := s.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// SanitizeFileName strips directory separators and control characters from
// a caller-supplied filename before it is served back in headers.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
