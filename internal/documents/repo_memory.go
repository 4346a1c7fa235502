package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Catalog with an owner index.
type MemoryRepo struct {
	mu      sync.RWMutex
	docs    map[string]Document
	order   []string                       // insertion order
	byOwner map[string]map[string]struct{} // owner id -> document ids
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:    make(map[string]Document),
		byOwner: make(map[string]map[string]struct{}),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return "", ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[doc.ID]; exists {
		return "", ErrDuplicateID
	}
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	if owner := doc.Owner(); owner != "" {
		ids, ok := r.byOwner[owner]
		if !ok {
			ids = make(map[string]struct{})
			r.byOwner[owner] = ids
		}
		ids[doc.ID] = struct{}{}
	}
	return doc.ID, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.docs[id])
	}
	r.mu.RUnlock()

	sortNewestFirst(docs)
	return docs, nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := r.byOwner[ownerID]
	docs := make([]Document, 0, len(ids))
	for _, id := range r.order {
		if _, ok := ids[id]; ok {
			docs = append(docs, r.docs[id])
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(docs)
	return docs, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if owner := doc.Owner(); owner != "" {
		delete(r.byOwner[owner], id)
		if len(r.byOwner[owner]) == 0 {
			delete(r.byOwner, owner)
		}
	}
	return nil
}

// sortNewestFirst orders by UploadedAt descending; ties keep their input order.
func sortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
}

var _ Catalog = (*MemoryRepo)(nil)
