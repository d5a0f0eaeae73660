package document

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository is the document metadata catalog. Categories are stored
// upper-cased; callers normalize before querying. Pair lookups return rows
// ordered by id ascending, so "first match" means lowest id.
type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id int64) (*Document, error)
	ListAll(ctx context.Context) ([]Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	ListByCategory(ctx context.Context, category string) ([]Document, error)
	ListByOwnerAndCategory(ctx context.Context, ownerID, category string) ([]Document, error)
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id int64) error
	ListStoredNames(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Document, error) {
	var d Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).Order("id ASC").Find(&docs).Error
	return docs, err
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&docs).Error
	return docs, err
}

func (r *repository) ListByCategory(ctx context.Context, category string) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&docs).Error
	return docs, err
}

func (r *repository) ListByOwnerAndCategory(ctx context.Context, ownerID, category string) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND category = ?", ownerID, category).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

// Update rewrites all mutable fields of the row in one statement.
func (r *repository) Update(ctx context.Context, d *Document) error {
	res := r.db.WithContext(ctx).Model(&Document{}).Where("id = ?", d.ID).Updates(map[string]any{
		"owner_id":      d.OwnerID,
		"category":      d.Category,
		"stored_name":   d.StoredName,
		"original_name": d.OriginalName,
		"media_type":    d.MediaType,
		"size_bytes":    d.SizeBytes,
		"download_ref":  d.DownloadRef,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Delete removes the row. Unlike blob deletion this is not idempotent:
// callers need to know whether a record existed before deciding to release
// its blob.
func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repository) ListStoredNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&Document{}).Pluck("stored_name", &names).Error
	return names, err
}
