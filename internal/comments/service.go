package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorLookup populates comment authors.
type AuthorLookup interface {
	Authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Author, error)
}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// ListByPost returns a post's comments, newest first, with authors populated.
func (s *Service) ListByPost(ctx context.Context, post primitive.ObjectID, authors AuthorLookup) ([]*models.CommentView, error) {
	list, err := s.repo.ListByPost(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.User)
	}
	byID := map[primitive.ObjectID]*models.Author{}
	if authors != nil && len(ids) > 0 {
		if byID, err = authors.Authors(ctx, ids); err != nil {
			return nil, err
		}
	}
	out := make([]*models.CommentView, 0, len(list))
	for _, c := range list {
		out = append(out, &models.CommentView{Comment: c, Author: byID[c.User]})
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, owner, post primitive.ObjectID, description string) (*models.Comment, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description is required: %w", apperr.ErrValidation)
	}
	c := &models.Comment{User: owner, Post: post, Description: description}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the stored comment or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("comment %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	return s.repo.DeleteByID(ctx, id)
}
