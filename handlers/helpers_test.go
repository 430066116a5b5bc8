package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/assets"
	"github.com/xmoure/blog-api-server/internal/comments"
	"github.com/xmoure/blog-api-server/internal/models"
	"github.com/xmoure/blog-api-server/internal/posts"
	"github.com/xmoure/blog-api-server/internal/users"
	"github.com/xmoure/blog-api-server/pkg/middleware"
)

// claimsToken implements middleware.Token
type claimsToken map[string]interface{}

func (t claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// fakeVerifier accepts "user:<sub>" and "admin:<sub>" bearer tokens.
type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	role, sub, ok := strings.Cut(raw, ":")
	if !ok || sub == "" {
		return nil, fmt.Errorf("invalid token")
	}
	claims := claimsToken{"sub": sub}
	if role == "admin" {
		claims["metadata"] = map[string]interface{}{"role": "admin"}
	}
	return claims, nil
}

type fakeAssets struct{}

func (fakeAssets) UploadAuth(ctx context.Context) (*assets.UploadParams, error) {
	return &assets.UploadParams{Token: "tok", Expire: 1700001800, Signature: "sig", PublicKey: "public_x"}, nil
}

type testEnv struct {
	t        *testing.T
	router   *gin.Engine
	users    *users.MemoryRepository
	posts    *posts.MemoryRepository
	comments *comments.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := &testEnv{
		t:        t,
		users:    users.NewMemoryRepository(),
		posts:    posts.NewMemoryRepository(),
		comments: comments.NewMemoryRepository(),
	}
	usvc := users.NewService(e.users)
	psvc := posts.NewService(e.posts)
	csvc := comments.NewService(e.comments)
	policy := access.NewPolicy(e.users)

	r := gin.New()
	r.Use(middleware.OptionalAuth(fakeVerifier{}))
	api := r.Group("/")
	NewPostsHandler(psvc, usvc, policy, fakeAssets{}).Register(api)
	NewCommentsHandler(csvc, psvc, usvc, policy).Register(api)
	NewUsersHandler(usvc, policy).Register(api)
	e.router = r
	return e
}

// seedUser stores a local user whose external id is "ext_<name>".
func (e *testEnv) seedUser(name string) *models.User {
	e.t.Helper()
	u := &models.User{ExternalID: "ext_" + name, UserName: name, Email: name + "@example.com"}
	require.NoError(e.t, e.users.Create(context.Background(), u))
	return u
}

// do sends a JSON request; token is "" for anonymous requests.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}

