package documents

import "context"

// Catalog persists document metadata keyed by id.
type Catalog interface {
	// Create stores doc under doc.ID and returns the id.
	Create(ctx context.Context, doc Document) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	// ListAll returns every document, most recently uploaded first.
	ListAll(ctx context.Context) ([]Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	Delete(ctx context.Context, id string) error
}
