package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/elearn-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore is the credential store.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
}

// DocumentStore is the document catalog.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc models.Document) (models.Document, error)
	FindDocument(ctx context.Context, id int64) (models.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error)
}

// EntitlementStore is the purchase ledger. InsertEntitlement must return
// ErrAlreadyExists when the (user, document) pair is already recorded.
type EntitlementStore interface {
	FindEntitlement(ctx context.Context, userID, documentID int64) (models.Entitlement, error)
	InsertEntitlement(ctx context.Context, userID, documentID int64, at time.Time) (models.Entitlement, error)
	ListEntitlementsByUser(ctx context.Context, userID int64) ([]models.PurchasedDocument, error)
	ListEntitlementsByDocument(ctx context.Context, documentID int64) ([]models.Entitlement, error)
}

// Store bundles every persistence concern the server needs.
type Store interface {
	UserStore
	DocumentStore
	EntitlementStore
	Close()
}
