// Package memory is an in-process implementation of storage.Store. It
// enforces the same uniqueness rules as the Postgres schema. It backs the
// service, server and admin CLI tests; the server binary always runs on
// Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type pairKey struct {
	userID, documentID int64
}

type Store struct {
	mu sync.RWMutex

	users   map[int64]models.User
	byEmail map[string]int64
	docs    map[int64]models.Document
	grants  map[pairKey]models.Entitlement

	nextUserID  int64
	nextDocID   int64
	nextGrantID int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:   make(map[int64]models.User),
		byEmail: make(map[string]int64),
		docs:    make(map[int64]models.Document),
		grants:  make(map[pairKey]models.Entitlement),
		now:     time.Now,
	}
}

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) FindUserByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return s.mutateUser(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (s *Store) UpdateProfile(_ context.Context, id int64, update models.ProfileUpdate) (models.User, error) {
	var out models.User
	err := s.mutateUser(id, func(u *models.User) {
		*u = update.Apply(*u)
		out = *u
	})
	return out, err
}

func (s *Store) UpdateStatus(_ context.Context, id int64, status models.Status) error {
	return s.mutateUser(id, func(u *models.User) { u.Status = status })
}

func (s *Store) UpdateRole(_ context.Context, id int64, role models.Role) error {
	return s.mutateUser(id, func(u *models.User) { u.Role = role })
}

func (s *Store) ListUsers(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, limit, offset), nil
}

func (s *Store) mutateUser(id int64, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *Store) CreateDocument(_ context.Context, doc models.Document) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDocID++
	doc.ID = s.nextDocID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now()
	}
	s.docs[doc.ID] = doc
	return doc, nil
}

// PutDocument stores doc under its own id, replacing any existing entry.
func (s *Store) PutDocument(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now()
	}
	s.docs[doc.ID] = doc
	if doc.ID > s.nextDocID {
		s.nextDocID = doc.ID
	}
}

func (s *Store) FindDocument(_ context.Context, id int64) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return models.Document{}, storage.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDocuments(_ context.Context, limit, offset int) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]models.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return page(docs, limit, offset), nil
}

func (s *Store) FindEntitlement(_ context.Context, userID, documentID int64) (models.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.grants[pairKey{userID, documentID}]
	if !ok {
		return models.Entitlement{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) InsertEntitlement(_ context.Context, userID, documentID int64, at time.Time) (models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID, documentID}
	if _, ok := s.grants[key]; ok {
		return models.Entitlement{}, storage.ErrAlreadyExists
	}
	if _, ok := s.users[userID]; !ok {
		return models.Entitlement{}, storage.ErrNotFound
	}
	if _, ok := s.docs[documentID]; !ok {
		return models.Entitlement{}, storage.ErrNotFound
	}
	s.nextGrantID++
	e := models.Entitlement{ID: s.nextGrantID, UserID: userID, DocumentID: documentID, PurchasedAt: at}
	s.grants[key] = e
	return e, nil
}

func (s *Store) ListEntitlementsByUser(_ context.Context, userID int64) ([]models.PurchasedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PurchasedDocument, 0)
	for key, e := range s.grants {
		if key.userID != userID {
			continue
		}
		out = append(out, models.PurchasedDocument{Document: s.docs[key.documentID], PurchasedAt: e.PurchasedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return out, nil
}

func (s *Store) ListEntitlementsByDocument(_ context.Context, documentID int64) ([]models.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Entitlement, 0)
	for key, e := range s.grants {
		if key.documentID == documentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
