package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *Service) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return s.repo.GetByUserName(ctx, userName)
}

// Authors returns the public projection of each distinct user in ids, keyed by id.
func (s *Service) Authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Author, error) {
	seen := map[primitive.ObjectID]bool{}
	uniq := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	list, err := s.repo.GetByIDs(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	out := make(map[primitive.ObjectID]*models.Author, len(list))
	for _, u := range list {
		out[u.ID] = u.Author()
	}
	return out, nil
}

// SavedPosts returns the post ids the user has saved.
func (s *Service) SavedPosts(ctx context.Context, u *models.User) ([]string, error) {
	fresh, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, fmt.Errorf("user %s: %w", u.ID.Hex(), apperr.ErrNotFound)
	}
	if fresh.SavedPosts == nil {
		return []string{}, nil
	}
	return fresh.SavedPosts, nil
}

// ToggleSavedPost saves postID when absent from the user's list and removes it otherwise.
// It reports whether the post is saved after the call.
func (s *Service) ToggleSavedPost(ctx context.Context, u *models.User, postID string) (bool, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return false, fmt.Errorf("postId is required: %w", apperr.ErrValidation)
	}
	for _, p := range u.SavedPosts {
		if p == postID {
			if err := s.repo.RemoveSavedPost(ctx, u.ID, postID); err != nil {
				return true, err
			}
			return false, nil
		}
	}
	if err := s.repo.AddSavedPost(ctx, u.ID, postID); err != nil {
		return false, err
	}
	return true, nil
}
