package documents

import "time"

// DocumentResponse is the outward-facing summary of a document.
type DocumentResponse struct {
	ID               string    `json:"id"`
	FileName         string    `json:"filename"`
	MimeType         string    `json:"mimeType"`
	OwnerID          *string   `json:"ownerId,omitempty"`
	SizeBytes        int64     `json:"sizeBytes"`
	ExtractionStatus string    `json:"extractionStatus"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// ToResponse maps a Document to its summary.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		FileName:         doc.FileName,
		MimeType:         doc.MimeType,
		OwnerID:          doc.OwnerID,
		SizeBytes:        doc.SizeBytes,
		ExtractionStatus: string(doc.ExtractionStatus),
		UploadedAt:       doc.UploadedAt,
	}
}

// ToResponses maps a slice, never returning nil.
func ToResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	return out
}
