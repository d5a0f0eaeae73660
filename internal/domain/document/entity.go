package document

import "time"

// Document is the catalog record for one stored file. (OwnerID, Category)
// is the natural key of the single-upload path: at most one current record
// per pair is kept there, while the batch path deliberately inserts
// without checking the pair.
type Document struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID      string    `gorm:"column:owner_id;index:idx_owner_category" json:"owner_id"`
	Category     string    `gorm:"column:category;index:idx_owner_category" json:"category"` // stored upper-cased
	StoredName   string    `gorm:"column:stored_name" json:"stored_name"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	MediaType    string    `gorm:"column:media_type" json:"media_type"` // caller-declared, advisory
	SizeBytes    int64     `gorm:"column:size_bytes" json:"size_bytes"`
	DownloadRef  string    `gorm:"column:download_ref" json:"download_ref"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
