package posts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by tests and local runs.
// Slugs are unique, as with the Mongo index.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.Post)}
}

func clone(p *models.Post) *models.Post {
	c := *p
	return &c
}

func (m *MemoryRepository) Create(ctx context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.store {
		if cur.Slug == p.Slug {
			return fmt.Errorf("slug %q: %w", p.Slug, apperr.ErrConflict)
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.store[p.ID] = clone(p)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return clone(p), nil
	}
	return nil, nil
}

func (m *MemoryRepository) bySlug(slug string) *models.Post {
	for _, p := range m.store {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (m *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p := m.bySlug(slug); p != nil {
		return clone(p), nil
	}
	return nil, nil
}

func (m *MemoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySlug(slug) != nil, nil
}

func (m *MemoryRepository) matches(p *models.Post, q Query) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Author != nil && p.User != *q.Author {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Search)) {
		return false
	}
	if q.Featured && !p.IsFeatured {
		return false
	}
	if q.Sort == SortTrending {
		now := q.Now
		if now.IsZero() {
			now = time.Now()
		}
		if p.CreatedAt.Before(now.Add(-TrendingWindow)) {
			return false
		}
	}
	return true
}

func (m *MemoryRepository) List(ctx context.Context, q Query) ([]*models.Post, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []*models.Post{}
	for _, p := range m.store {
		if m.matches(p, q) {
			all = append(all, clone(p))
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		switch q.Sort {
		case SortOldest:
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		case SortPopular, SortTrending:
			return all[i].Visit > all[j].Visit
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, e Edit) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	if e.Title != nil {
		p.Title = *e.Title
	}
	if e.Description != nil {
		p.Description = *e.Description
	}
	if e.Category != nil {
		p.Category = *e.Category
	}
	if e.Content != nil {
		p.Content = *e.Content
	}
	if e.Img != nil {
		p.Img = *e.Img
	}
	p.UpdatedAt = time.Now().UTC()
	return clone(p), nil
}

func (m *MemoryRepository) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	p.IsFeatured = !p.IsFeatured
	p.UpdatedAt = time.Now().UTC()
	return clone(p), nil
}

func (m *MemoryRepository) IncrementVisit(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.bySlug(slug); p != nil {
		p.Visit++
	}
	return nil
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
	for id, p := range m.store {
		if p.User == owner {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

// CountByOwner returns how many stored posts belong to owner.
func (m *MemoryRepository) CountByOwner(owner primitive.ObjectID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.store {
		if p.User == owner {
			n++
		}
	}
	return n
}
