package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"github.com/xmoure/blog-api-server/pkg/logger"
	"github.com/xmoure/blog-api-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result reports what applying an event did to local state.
type Result int

const (
	Ignored Result = iota
	Created
	Updated
	Deleted
	NotFound
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	}
	return "ignored"
}

// UserStore is the subset of the users repository the sync writes to.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) (models.Outcome, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error)
}

// OwnedStore removes every record owned by a user.
type OwnedStore interface {
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
}

type Service struct {
	users    UserStore
	posts    OwnedStore
	comments OwnedStore
}

func NewService(users UserStore, posts, comments OwnedStore) *Service {
	return &Service{users: users, posts: posts, comments: comments}
}

// Apply folds a verified event into local state. Events for unknown users
// are no-ops, so redelivery of updates and deletions is safe.
func (s *Service) Apply(ctx context.Context, evt Event) (Result, error) {
	var (
		res Result
		err error
	)
	switch evt.Type {
	case UserCreated:
		res, err = s.create(ctx, evt.Data)
	case UserUpdated:
		res, err = s.update(ctx, evt.Data)
	case UserDeleted:
		res, err = s.delete(ctx, evt.Data.ID)
	default:
		res = Ignored
	}
	outcome := res.String()
	if err != nil {
		outcome = "error"
		if errors.Is(err, apperr.ErrConflict) {
			outcome = "conflict"
		}
	}
	metrics.WebhookEvents.WithLabelValues(evt.Type, outcome).Inc()
	return res, err
}

func (s *Service) create(ctx context.Context, d EventData) (Result, error) {
	if d.ID == "" {
		return Ignored, fmt.Errorf("user.created without id: %w", apperr.ErrValidation)
	}
	u := &models.User{
		ExternalID: d.ID,
		UserName:   d.DisplayName(),
		Email:      d.PrimaryEmail(),
		Img:        d.Avatar(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Ignored, fmt.Errorf("create user %s: %w", d.ID, err)
	}
	logger.Infof("identity: created user %s (%s)", u.ID.Hex(), d.ID)
	return Created, nil
}

func (s *Service) update(ctx context.Context, d EventData) (Result, error) {
	u, err := s.users.GetByExternalID(ctx, d.ID)
	if err != nil {
		return Ignored, fmt.Errorf("lookup user %s: %w", d.ID, err)
	}
	if u == nil {
		logger.Debugf("identity: update for unknown user %s", d.ID)
		return NotFound, nil
	}
	u.Img = d.Avatar()
	u.Email = d.PrimaryEmail()
	u.UserName = d.DisplayName()
	out, err := s.users.UpdateProfile(ctx, u)
	if err != nil {
		return Ignored, fmt.Errorf("update user %s: %w", d.ID, err)
	}
	if out == models.NotFound {
		return NotFound, nil
	}
	return Updated, nil
}

// delete removes owned posts and comments before the user record. A failed
// cascade step leaves the user in place so a redelivered event can finish it.
func (s *Service) delete(ctx context.Context, externalID string) (Result, error) {
	u, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return Ignored, fmt.Errorf("lookup user %s: %w", externalID, err)
	}
	if u == nil {
		return NotFound, nil
	}
	posts, err := s.posts.DeleteByOwner(ctx, u.ID)
	if err != nil {
		return Ignored, fmt.Errorf("delete posts of %s: %w", externalID, err)
	}
	metrics.CascadeDeleted.WithLabelValues("post").Add(float64(posts))
	comments, err := s.comments.DeleteByOwner(ctx, u.ID)
	if err != nil {
		return Ignored, fmt.Errorf("delete comments of %s: %w", externalID, err)
	}
	metrics.CascadeDeleted.WithLabelValues("comment").Add(float64(comments))
	out, err := s.users.DeleteByID(ctx, u.ID)
	if err != nil {
		return Ignored, fmt.Errorf("delete user %s: %w", externalID, err)
	}
	if out == models.NotFound {
		return NotFound, nil
	}
	logger.Infof("identity: deleted user %s with %d posts and %d comments", externalID, posts, comments)
	return Deleted, nil
}
