package document

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrPathEscape       = errors.New("stored name resolves outside the storage root")
	ErrBlobNotFound     = errors.New("no stored file under that name")

	// ErrBlobMissing is a record whose backing file is gone: a server-side
	// consistency fault, kept distinct from an ordinary not-found so
	// operators can tell corruption from a bad request.
	ErrBlobMissing = errors.New("stored file missing for existing document")
)
