package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/slug"
)

func writeErrorFor(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/posts", nil)
	writeError(c, err)
	return w
}

func TestWriteError_ConflictsHideInternals(t *testing.T) {
	cases := []error{
		fmt.Errorf("create post after 5 attempts: %w", fmt.Errorf("insert post: %w", apperr.ErrConflict)),
		fmt.Errorf("resolve slug: %w", fmt.Errorf("%w after 3 attempts for %q", slug.ErrProbeExhausted, "hello")),
	}
	for _, err := range cases {
		w := writeErrorFor(err)
		require.Equal(t, http.StatusConflict, w.Code, err.Error())
		require.JSONEq(t, `{"error":"Slug already taken, retry"}`, w.Body.String())
	}
}

func TestWriteError_Taxonomy(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, writeErrorFor(fmt.Errorf("x: %w", apperr.ErrValidation)).Code)
	require.Equal(t, http.StatusNotFound, writeErrorFor(fmt.Errorf("x: %w", apperr.ErrNotFound)).Code)
	require.Equal(t, http.StatusForbidden, writeErrorFor(apperr.ErrForbidden).Code)

	w := writeErrorFor(fmt.Errorf("boom"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
