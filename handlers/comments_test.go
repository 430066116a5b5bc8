package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("alice")
	e.seedUser("bob")
	postID := e.createPost("user:ext_alice", "commented")["_id"].(string)

	body := map[string]string{"description": "nice post"}
	requireStatus(t, e.do(http.MethodPost, "/comments/"+postID, "", body), http.StatusUnauthorized)
	requireStatus(t, e.do(http.MethodPost, "/comments/64b000000000000000000000", "user:ext_bob", body), http.StatusNotFound)
	requireStatus(t, e.do(http.MethodPost, "/comments/"+postID, "user:ext_bob", map[string]string{"description": " "}), http.StatusBadRequest)

	w := e.do(http.MethodPost, "/comments/"+postID, "user:ext_bob", body)
	requireStatus(t, w, http.StatusCreated)
	commentID := decode(t, w)["_id"].(string)

	w = e.do(http.MethodGet, "/comments/"+postID, "", nil)
	requireStatus(t, w, http.StatusOK)
	require.Contains(t, w.Body.String(), `"userName":"bob"`)
	require.Contains(t, w.Body.String(), "nice post")

	requireStatus(t, e.do(http.MethodDelete, "/comments/"+commentID, "user:ext_alice", nil), http.StatusForbidden)
	requireStatus(t, e.do(http.MethodDelete, "/comments/"+commentID, "user:ext_bob", nil), http.StatusOK)
	requireStatus(t, e.do(http.MethodDelete, "/comments/"+commentID, "admin:ext_root", nil), http.StatusNotFound)
}
