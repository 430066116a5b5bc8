package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers struct {
	byExt   map[string]*models.User
	lookups int
	err     error
}

func (f *fakeUsers) GetByExternalID(ctx context.Context, ext string) (*models.User, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	return f.byExt[ext], nil
}

func setup() (*Policy, *fakeUsers, *models.User, *models.User) {
	u := &models.User{ID: primitive.NewObjectID(), ExternalID: "ext-u"}
	v := &models.User{ID: primitive.NewObjectID(), ExternalID: "ext-v"}
	users := &fakeUsers{byExt: map[string]*models.User{"ext-u": u, "ext-v": v}}
	return NewPolicy(users), users, u, v
}

func TestNewCaller_DefaultsRole(t *testing.T) {
	require.Equal(t, RoleUser, NewCaller("x", "").Role)
	require.Equal(t, RoleAdmin, NewCaller("x", "admin").Role)
}

func TestDecide_AnonymousAlwaysUnauthenticated(t *testing.T) {
	p, users, u, _ := setup()
	for _, action := range []Action{ActionCreate, ActionDelete, ActionFeature, ActionEdit} {
		for _, role := range []string{RoleUser, RoleAdmin} {
			v, err := p.Decide(context.Background(), Caller{Role: role}, action, u.ID)
			require.NoError(t, err)
			require.Equal(t, RejectUnauthenticated, v.Decision, "%s as %s", action, role)
		}
	}
	require.Zero(t, users.lookups)
}

func TestDecide_AdminDeleteAndFeatureRegardlessOfOwner(t *testing.T) {
	p, users, u, v := setup()
	admin := NewCaller("ext-u", RoleAdmin)
	for _, owner := range []primitive.ObjectID{u.ID, v.ID, primitive.NewObjectID()} {
		for _, action := range []Action{ActionDelete, ActionFeature} {
			verdict, err := p.Decide(context.Background(), admin, action, owner)
			require.NoError(t, err)
			require.True(t, verdict.Permitted())
		}
	}
	require.Zero(t, users.lookups)
}

func TestDecide_AdminWithoutLocalRecordStillPermitted(t *testing.T) {
	p, _, u, _ := setup()
	verdict, err := p.Decide(context.Background(), NewCaller("ext-unknown", RoleAdmin), ActionDelete, u.ID)
	require.NoError(t, err)
	require.Equal(t, Permit, verdict.Decision)
}

func TestDecide_OwnerDelete(t *testing.T) {
	p, _, u, v := setup()
	caller := NewCaller("ext-u", "")

	verdict, err := p.Decide(context.Background(), caller, ActionDelete, u.ID)
	require.NoError(t, err)
	require.Equal(t, Permit, verdict.Decision)
	require.Equal(t, u.ID, verdict.User.ID)

	verdict, err = p.Decide(context.Background(), caller, ActionDelete, v.ID)
	require.NoError(t, err)
	require.Equal(t, RejectForbidden, verdict.Decision)
}

func TestDecide_FeatureNeverForUsers(t *testing.T) {
	p, users, u, v := setup()
	caller := NewCaller("ext-u", RoleUser)
	for _, owner := range []primitive.ObjectID{u.ID, v.ID} {
		verdict, err := p.Decide(context.Background(), caller, ActionFeature, owner)
		require.NoError(t, err)
		require.Equal(t, RejectForbidden, verdict.Decision)
	}
	require.Zero(t, users.lookups)
}

func TestDecide_UnknownLocalUserIsNotFound(t *testing.T) {
	p, _, u, _ := setup()
	verdict, err := p.Decide(context.Background(), NewCaller("ext-missing", RoleUser), ActionDelete, u.ID)
	require.NoError(t, err)
	require.Equal(t, RejectNotFound, verdict.Decision)

	verdict, err = p.Authenticate(context.Background(), NewCaller("ext-missing", RoleUser))
	require.NoError(t, err)
	require.Equal(t, RejectNotFound, verdict.Decision)
}

func TestDecide_EditIsOwnerOnly(t *testing.T) {
	p, _, u, v := setup()
	verdict, err := p.Decide(context.Background(), NewCaller("ext-u", RoleAdmin), ActionEdit, v.ID)
	require.NoError(t, err)
	require.Equal(t, RejectForbidden, verdict.Decision)

	verdict, err = p.Decide(context.Background(), NewCaller("ext-u", RoleAdmin), ActionEdit, u.ID)
	require.NoError(t, err)
	require.Equal(t, Permit, verdict.Decision)
}

func TestAuthenticate_ReturnsLocalUser(t *testing.T) {
	p, _, u, _ := setup()
	verdict, err := p.Authenticate(context.Background(), NewCaller("ext-u", ""))
	require.NoError(t, err)
	require.True(t, verdict.Permitted())
	require.Equal(t, u.ID, verdict.User.ID)
}

func TestDecide_LookupErrorIsReturned(t *testing.T) {
	p, users, u, _ := setup()
	users.err = errors.New("mongo down")
	_, err := p.Decide(context.Background(), NewCaller("ext-u", ""), ActionDelete, u.ID)
	require.ErrorIs(t, err, users.err)
}
