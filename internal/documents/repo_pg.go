package documents

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PGRepo implements Catalog using Postgres.
type PGRepo struct {
	DB *sqlx.DB
}

const documentColumns = `id, file_name, mime_type, owner_id, raw_handle, text_handle, size_bytes, extraction_status, uploaded_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) (string, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return "", ErrInvalidInput
	}
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES (:id, :file_name, :mime_type, :owner_id, :raw_handle, :text_handle, :size_bytes, :extraction_status, :uploaded_at)`

	if _, err := r.DB.NamedExecContext(ctx, query, doc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return "", ErrDuplicateID
			case pgForeignKeyViolation:
				return "", ErrOwnerNotFound
			}
		}
		return "", err
	}
	return doc.ID, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc Document
	if err := r.DB.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) ListAll(ctx context.Context) ([]Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC, id`
	docs := []Document{}
	if err := r.DB.SelectContext(ctx, &docs, query); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY uploaded_at DESC, id`
	docs := []Document{}
	if err := r.DB.SelectContext(ctx, &docs, query, ownerID); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Catalog = (*PGRepo)(nil)
