package documents

import "time"

// ExtractionStatus records how text extraction went for a document.
type ExtractionStatus string

const (
	StatusOK          ExtractionStatus = "ok"
	StatusEmpty       ExtractionStatus = "empty"
	StatusUnsupported ExtractionStatus = "unsupported"
	StatusFailed      ExtractionStatus = "failed"
)

// Document is the catalog record of an ingested file. Artifact handles are
// set once at creation and never change.
type Document struct {
	ID               string           `db:"id"`
	FileName         string           `db:"file_name"`
	MimeType         string           `db:"mime_type"`
	OwnerID          *string          `db:"owner_id"`
	RawHandle        string           `db:"raw_handle"`
	TextHandle       string           `db:"text_handle"`
	SizeBytes        int64            `db:"size_bytes"`
	ExtractionStatus ExtractionStatus `db:"extraction_status"`
	UploadedAt       time.Time        `db:"uploaded_at"`
}

// Owner returns the owner id or "" for unowned documents.
func (d Document) Owner() string {
	if d.OwnerID == nil {
		return ""
	}
	return *d.OwnerID
}
