package models

import "time"

// FileKind distinguishes the two document collections a user keeps.
type FileKind string

const (
	FileKindResume FileKind = "resume"
	FileKindCV     FileKind = "cv"
)

// Valid reports whether k is one of the known kinds.
func (k FileKind) Valid() bool {
	return k == FileKindResume || k == FileKindCV
}

// StoredFile is metadata for an uploaded document. The bytes themselves
// live in object storage; URL resolves to the object and is only persisted
// after the upload has been verified server-side.
type StoredFile struct {
	ID     string
	UserID string
	Kind   FileKind

	// URL is the resolved public URL of the object (CDN or virtual-hosted).
	URL string
	// FileName is the original file name the client reported.
	FileName string
	// Label is an optional user-assigned display name.
	Label string

	UploadedAt time.Time
}
