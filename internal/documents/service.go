package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsearch-backend/internal/extract"
	"docsearch-backend/internal/shared/metrics"
	"docsearch-backend/internal/shared/storage/artifact"
	"docsearch-backend/internal/shared/telemetry"
)

// Extractor turns uploaded bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType, fileName string) (extract.Result, error)
}

// OwnerDirectory reports whether a user id exists.
type OwnerDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service runs the ingestion and deletion workflows over the catalog and artifact store.
type Service struct {
	Catalog   Catalog
	Store     artifact.Store
	Extractor Extractor
	Owners    OwnerDirectory

	Now   func() time.Time
	NewID func() string
}

// UploadInput is one file received for ingestion.
type UploadInput struct {
	FileName string
	MimeType string
	OwnerID  string
	Data     []byte
}

// Upload extracts text, writes both artifacts, then records the document.
// Artifacts are written before the catalog row so a crash can leak files but
// never leave a row pointing at missing artifacts.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	fileName := strings.TrimSpace(in.FileName)
	if len(in.Data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	var ownerID *string
	if owner := strings.TrimSpace(in.OwnerID); owner != "" {
		if s.Owners != nil {
			ok, err := s.Owners.Exists(ctx, owner)
			if err != nil {
				return Document{}, fmt.Errorf("lookup owner: %w", err)
			}
			if !ok {
				return Document{}, ErrOwnerNotFound
			}
		}
		ownerID = &owner
	}

	text, status, err := s.extract(ctx, in.Data, in.MimeType, fileName)
	if err != nil {
		return Document{}, err
	}

	id := s.newID()
	handles, err := s.Store.Put(ctx, id, in.Data, text)
	if err != nil {
		return Document{}, fmt.Errorf("store artifacts: %w", err)
	}

	doc := Document{
		ID:               id,
		FileName:         fileName,
		MimeType:         strings.TrimSpace(in.MimeType),
		OwnerID:          ownerID,
		RawHandle:        handles.Raw,
		TextHandle:       handles.Text,
		SizeBytes:        int64(len(in.Data)),
		ExtractionStatus: status,
		UploadedAt:       s.now(),
	}
	if _, err := s.Catalog.Create(ctx, doc); err != nil {
		s.removeArtifacts(ctx, doc)
		return Document{}, err
	}
	// The owner may have been deleted while the row was being written; its
	// cascade has already run, so the new row would be left orphaned.
	if ownerID != nil && s.Owners != nil {
		if ok, err := s.Owners.Exists(ctx, *ownerID); err == nil && !ok {
			if err := s.Catalog.Delete(ctx, doc.ID); err != nil && !errors.Is(err, ErrNotFound) {
				return Document{}, fmt.Errorf("discard orphaned document: %w", err)
			}
			s.removeArtifacts(ctx, doc)
			return Document{}, ErrOwnerNotFound
		}
	}

	metrics.IncDocumentsUploaded()
	telemetry.Info("document.uploaded", map[string]any{
		"document_id":       doc.ID,
		"owner_id":          doc.Owner(),
		"mime_type":         doc.MimeType,
		"size_bytes":        doc.SizeBytes,
		"extraction_status": string(doc.ExtractionStatus),
	})
	return doc, nil
}

// extract applies the ingestion policy: corrupt input degrades to empty text
// with StatusFailed instead of rejecting the upload.
func (s *Service) extract(ctx context.Context, data []byte, mimeType, fileName string) (string, ExtractionStatus, error) {
	res, err := s.Extractor.Extract(ctx, data, mimeType, fileName)
	metrics.ObserveExtractionDurationMs(float64(res.Duration.Microseconds()) / 1000.0)

	var extractErr *extract.ExtractionError
	switch {
	case errors.As(err, &extractErr):
		metrics.IncExtractionFailed()
		telemetry.Warn("extract.failed", map[string]any{
			"file_name": fileName,
			"mime_type": mimeType,
			"kind":      string(extractErr.Kind),
			"error":     extractErr.Err,
		})
		return "", StatusFailed, nil
	case err != nil:
		return "", "", err
	case res.Kind == extract.KindUnknown:
		return "", StatusUnsupported, nil
	case strings.TrimSpace(res.Text) == "":
		return res.Text, StatusEmpty, nil
	default:
		return res.Text, StatusOK, nil
	}
}

// Get returns a single document.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrNotFound
	}
	return s.Catalog.Get(ctx, id)
}

// List returns every document, most recent first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Catalog.ListAll(ctx)
}

// ListByOwner returns the documents owned by ownerID, most recent first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	return s.Catalog.ListByOwner(ctx, ownerID)
}

// OpenRaw returns the original bytes of a document.
func (s *Service) OpenRaw(ctx context.Context, id string) (Document, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	data, err := s.Store.Get(ctx, doc.RawHandle)
	if err != nil {
		return Document{}, nil, mapArtifactErr(err)
	}
	return doc, data, nil
}

// OpenText returns the extracted text of a document.
func (s *Service) OpenText(ctx context.Context, id string) (Document, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, "", err
	}
	data, err := s.Store.Get(ctx, doc.TextHandle)
	if err != nil {
		return Document{}, "", mapArtifactErr(err)
	}
	return doc, string(data), nil
}

// Delete removes both artifacts and then the catalog row.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.RawHandle); err != nil {
		return fmt.Errorf("delete raw artifact: %w", err)
	}
	if err := s.Store.Delete(ctx, doc.TextHandle); err != nil {
		return fmt.Errorf("delete text artifact: %w", err)
	}
	if err := s.Catalog.Delete(ctx, doc.ID); err != nil {
		return err
	}

	metrics.IncDocumentsDeleted()
	telemetry.Info("document.deleted", map[string]any{"document_id": doc.ID})
	return nil
}

// DeleteByOwner removes every document owned by ownerID and reports how many were removed.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	docs, err := s.Catalog.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, doc := range docs {
		if err := s.Delete(ctx, doc.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return removed, fmt.Errorf("delete document %s: %w", doc.ID, err)
		}
		removed++
	}
	return removed, nil
}

func (s *Service) removeArtifacts(ctx context.Context, doc Document) {
	for _, handle := range []string{doc.RawHandle, doc.TextHandle} {
		if err := s.Store.Delete(ctx, handle); err != nil {
			telemetry.Error("artifact.cleanup_failed", map[string]any{
				"document_id": doc.ID,
				"handle":      handle,
				"error":       err,
			})
		}
	}
}

func mapArtifactErr(err error) error {
	if errors.Is(err, artifact.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
