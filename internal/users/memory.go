package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by tests and local runs.
// It enforces the same unique keys as the Mongo indexes.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	c.SavedPosts = append([]string(nil), u.SavedPosts...)
	return &c
}

func (m *MemoryRepository) uniqueViolation(u *models.User) error {
	for id, cur := range m.store {
		if id == u.ID {
			continue
		}
		switch {
		case cur.ExternalID == u.ExternalID:
			return fmt.Errorf("externalId %q: %w", u.ExternalID, apperr.ErrConflict)
		case u.UserName != "" && cur.UserName == u.UserName:
			return fmt.Errorf("userName %q: %w", u.UserName, apperr.ErrConflict)
		case u.Email != "" && cur.Email == u.Email:
			return fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
		}
	}
	return nil
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if err := m.uniqueViolation(u); err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.SavedPosts == nil {
		u.SavedPosts = []string{}
	}
	m.store[u.ID] = clone(u)
	return nil
}

func (m *MemoryRepository) find(match func(*models.User) bool) *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if match(u) {
			return clone(u)
		}
	}
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id }), nil
}

func (m *MemoryRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ExternalID == externalID }), nil
}

func (m *MemoryRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.UserName == userName }), nil
}

func (m *MemoryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := m.store[id]; ok {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func (m *MemoryRepository) UpdateProfile(ctx context.Context, u *models.User) (models.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[u.ID]
	if !ok {
		return models.NotFound, nil
	}
	if err := m.uniqueViolation(u); err != nil {
		return models.NotFound, err
	}
	cur.UserName = u.UserName
	cur.Email = u.Email
	cur.Img = u.Img
	cur.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = cur.UpdatedAt
	return models.Updated, nil
}

func (m *MemoryRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return models.NotFound, nil
	}
	delete(m.store, id)
	return models.Deleted, nil
}

func (m *MemoryRepository) AddSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil
	}
	for _, p := range u.SavedPosts {
		if p == postID {
			return nil
		}
	}
	u.SavedPosts = append(u.SavedPosts, postID)
	return nil
}

func (m *MemoryRepository) RemoveSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil
	}
	kept := u.SavedPosts[:0]
	for _, p := range u.SavedPosts {
		if p != postID {
			kept = append(kept, p)
		}
	}
	u.SavedPosts = kept
	return nil
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
