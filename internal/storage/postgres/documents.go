package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/storage"
)

const documentColumns = `id, title, description, category_id, price, file_ref, preview_ref, file_type, created_at`

func (s *Store) CreateDocument(ctx context.Context, doc models.Document) (models.Document, error) {
	query := `
		INSERT INTO documents (title, description, category_id, price, file_ref, preview_ref, file_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	row := s.pool.QueryRow(ctx, query,
		doc.Title, doc.Description, doc.CategoryID, doc.Price, doc.FileRef, doc.PreviewRef, doc.FileType)
	return scanDocument(row)
}

func (s *Store) FindDocument(ctx context.Context, id int64) (models.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// ListDocuments returns the newest documents first.
func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var d models.Document
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &d.CategoryID, &d.Price,
		&d.FileRef, &d.PreviewRef, &d.FileType, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Document{}, storage.ErrNotFound
		}
		return models.Document{}, err
	}
	return d, nil
}
