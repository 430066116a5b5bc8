package posts

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"github.com/xmoure/blog-api-server/internal/sanitize"
	"github.com/xmoure/blog-api-server/internal/slug"
	"github.com/xmoure/blog-api-server/pkg/logger"
	"github.com/xmoure/blog-api-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 2
	// DefaultInsertAttempts bounds how often Create re-runs probe+insert after the
	// unique slug index rejects an insert.
	DefaultInsertAttempts = 5
)

// Input is the author-supplied part of a new post.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Content     string `json:"content"`
	Img         string `json:"img"`
}

// Service encapsulates post business logic.
type Service struct {
	repo           Repository
	slugs          *slug.Resolver
	insertAttempts int
}

type Option func(*Service)

// WithInsertAttempts overrides DefaultInsertAttempts.
func WithInsertAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.insertAttempts = n
		}
	}
}

// WithMaxProbeAttempts bounds each slug probe; zero keeps it unbounded.
func WithMaxProbeAttempts(n int) Option {
	return func(s *Service) { s.slugs.MaxAttempts = n }
}

func NewService(repo Repository, opts ...Option) *Service {
	resolver := slug.NewResolver(repo)
	resolver.Observe = func(n int) { metrics.SlugProbeAttempts.Observe(float64(n)) }
	s := &Service{repo: repo, slugs: resolver, insertAttempts: DefaultInsertAttempts}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create stores a new post owned by owner. Title and description are stripped of
// markup; content is stored unchanged and sanitized when read.
func (s *Service) Create(ctx context.Context, owner primitive.ObjectID, in Input) (*models.Post, error) {
	title := sanitize.PlainText(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}
	desc := sanitize.PlainText(in.Description)
	if desc == "" {
		desc = models.DefaultDescription
	}

	var lastErr error
	for attempt := 1; attempt <= s.insertAttempts; attempt++ {
		res, err := s.slugs.Resolve(ctx, html.UnescapeString(title))
		if err != nil {
			return nil, fmt.Errorf("resolve slug: %w", err)
		}
		p := &models.Post{
			User:        owner,
			Img:         in.Img,
			Title:       title,
			Slug:        res.Slug,
			Description: desc,
			Category:    strings.TrimSpace(in.Category),
			Content:     in.Content,
		}
		err = s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		// another writer took the slug between probe and insert
		metrics.SlugInsertConflicts.Inc()
		logger.Warnf("slug %q taken concurrently (attempt %d/%d)", res.Slug, attempt, s.insertAttempts)
		lastErr = err
	}
	return nil, fmt.Errorf("create post after %d attempts: %w", s.insertAttempts, lastErr)
}

// Page is one page of a post listing.
type Page struct {
	Posts   []*models.PostView `json:"posts"`
	HasMore bool               `json:"hasMore"`
}

// AuthorLookup populates post authors.
type AuthorLookup interface {
	Authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Author, error)
}

// List returns one page of posts with authors populated and bodies sanitized.
func (s *Service) List(ctx context.Context, q Query, authors AuthorLookup) (*Page, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.views(ctx, list, authors)
	if err != nil {
		return nil, err
	}
	return &Page{Posts: views, HasMore: int64(q.Page*q.Limit) < total}, nil
}

func (s *Service) views(ctx context.Context, list []*models.Post, authors AuthorLookup) ([]*models.PostView, error) {
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.User)
	}
	byID := map[primitive.ObjectID]*models.Author{}
	if authors != nil && len(ids) > 0 {
		var err error
		if byID, err = authors.Authors(ctx, ids); err != nil {
			return nil, err
		}
	}
	out := make([]*models.PostView, 0, len(list))
	for _, p := range list {
		p.Content = sanitize.Body(p.Content)
		out = append(out, &models.PostView{Post: p, Author: byID[p.User]})
	}
	return out, nil
}

// GetBySlug returns the post for slug, counting the read as a visit.
func (s *Service) GetBySlug(ctx context.Context, slugValue string, authors AuthorLookup) (*models.PostView, error) {
	p, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %q: %w", slugValue, apperr.ErrNotFound)
	}
	if err := s.repo.IncrementVisit(ctx, slugValue); err != nil {
		logger.Warnf("increment visit for %q: %v", slugValue, err)
	} else {
		p.Visit++
	}
	views, err := s.views(ctx, []*models.Post{p}, authors)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Get returns the stored post or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return p, nil
}

// Edit applies owner edits. The slug never changes.
func (s *Service) Edit(ctx context.Context, id primitive.ObjectID, e Edit) (*models.Post, error) {
	if e.Title != nil {
		t := sanitize.PlainText(*e.Title)
		if t == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", apperr.ErrValidation)
		}
		e.Title = &t
	}
	if e.Description != nil {
		d := sanitize.PlainText(*e.Description)
		e.Description = &d
	}
	if e.Content != nil && strings.TrimSpace(*e.Content) == "" {
		return nil, fmt.Errorf("content cannot be empty: %w", apperr.ErrValidation)
	}
	p, err := s.repo.Update(ctx, id, e)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return p, nil
}

// ToggleFeatured flips the featured flag.
func (s *Service) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, err := s.repo.ToggleFeatured(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	return s.repo.DeleteByID(ctx, id)
}
