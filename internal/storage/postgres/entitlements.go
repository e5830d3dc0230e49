package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/storage"
)

func (s *Store) FindEntitlement(ctx context.Context, userID, documentID int64) (models.Entitlement, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, document_id, purchased_at
		FROM document_purchases
		WHERE user_id = $1 AND document_id = $2`, userID, documentID)
	return scanEntitlement(row)
}

// InsertEntitlement records a purchase. The unique (user_id, document_id)
// constraint arbitrates concurrent inserts: the loser gets storage.ErrAlreadyExists.
// A missing user or document yields storage.ErrNotFound.
func (s *Store) InsertEntitlement(ctx context.Context, userID, documentID int64, at time.Time) (models.Entitlement, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO document_purchases (user_id, document_id, purchased_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, document_id) DO NOTHING
		RETURNING id, user_id, document_id, purchased_at`, userID, documentID, at)
	e, err := scanEntitlement(row)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.Entitlement{}, storage.ErrAlreadyExists
	case err != nil && isUniqueViolation(err):
		return models.Entitlement{}, storage.ErrAlreadyExists
	case err != nil && isForeignKeyViolation(err):
		return models.Entitlement{}, storage.ErrNotFound
	}
	return e, err
}

func (s *Store) ListEntitlementsByUser(ctx context.Context, userID int64) ([]models.PurchasedDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.title, d.description, d.category_id, d.price, d.file_ref, d.preview_ref, d.file_type, d.created_at,
		       p.purchased_at
		FROM document_purchases p
		JOIN documents d ON d.id = p.document_id
		WHERE p.user_id = $1
		ORDER BY p.purchased_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	out := make([]models.PurchasedDocument, 0)
	for rows.Next() {
		var pd models.PurchasedDocument
		d := &pd.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.CategoryID, &d.Price,
			&d.FileRef, &d.PreviewRef, &d.FileType, &d.CreatedAt, &pd.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, pd)
	}
	return out, rows.Err()
}

func (s *Store) ListEntitlementsByDocument(ctx context.Context, documentID int64) ([]models.Entitlement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, document_id, purchased_at
		FROM document_purchases
		WHERE document_id = $1
		ORDER BY purchased_at`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document purchases: %w", err)
	}
	defer rows.Close()

	out := make([]models.Entitlement, 0)
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntitlement(row pgx.Row) (models.Entitlement, error) {
	var e models.Entitlement
	if err := row.Scan(&e.ID, &e.UserID, &e.DocumentID, &e.PurchasedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Entitlement{}, storage.ErrNotFound
		}
		return models.Entitlement{}, err
	}
	return e, nil
}
