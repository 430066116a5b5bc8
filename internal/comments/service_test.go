package comments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuthors map[primitive.ObjectID]*models.Author

func (f fakeAuthors) Authors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Author, error) {
	return f, nil
}

func TestCreateListDelete(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()
	alice, post := primitive.NewObjectID(), primitive.NewObjectID()

	first, err := svc.Create(ctx, alice, post, " first ")
	require.NoError(t, err)
	require.Equal(t, "first", first.Description)
	time.Sleep(time.Millisecond)
	_, err = svc.Create(ctx, alice, post, "second")
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, primitive.NewObjectID(), "elsewhere")
	require.NoError(t, err)

	list, err := svc.ListByPost(ctx, post, fakeAuthors{alice: {ID: alice, UserName: "alice"}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "second", list[0].Description)
	require.Equal(t, "alice", list[0].Author.UserName)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, post, got.Post)

	out, err := svc.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.Deleted, out)
	_, err = svc.Get(ctx, first.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_RequiresDescription(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "   ")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteByOwner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Comment{User: owner, Post: primitive.NewObjectID(), Description: "x"}))
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{User: primitive.NewObjectID(), Description: "keep"}))

	n, err := repo.DeleteByOwner(ctx, owner)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.Zero(t, repo.CountByOwner(owner))
}
