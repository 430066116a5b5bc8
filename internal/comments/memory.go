package comments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by tests and local runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.Comment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.Comment)}
}

func (m *MemoryRepository) Create(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.store[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListByPost(ctx context.Context, post primitive.ObjectID) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Comment{}
	for _, c := range m.store {
		if c.Post == post {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
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

func (m *MemoryRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.store {
		if c.User == owner {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

// CountByOwner returns how many stored comments belong to owner.
func (m *MemoryRepository) CountByOwner(owner primitive.ObjectID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.store {
		if c.User == owner {
			n++
		}
	}
	return n
}
