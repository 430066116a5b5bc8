package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/users"
	"github.com/xmoure/blog-api-server/pkg/middleware"
)

type UsersHandler struct {
	users  *users.Service
	policy *access.Policy
}

func NewUsersHandler(u *users.Service, policy *access.Policy) *UsersHandler {
	return &UsersHandler{users: u, policy: policy}
}

// Register routes under /users
func (h *UsersHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.GET("/saved", h.SavedPosts)
	g.PATCH("/save", h.SavePost)
}

func (h *UsersHandler) SavedPosts(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.policy.Authenticate(ctx, middleware.CallerFrom(c))
	if !permitted(c, v, err, "Forbidden") {
		return
	}
	saved, err := h.users.SavedPosts(ctx, v.User)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

type saveRequest struct {
	PostID string `json:"postId" binding:"required"`
}

// SavePost toggles the post in the caller's saved list.
func (h *UsersHandler) SavePost(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.policy.Authenticate(ctx, middleware.CallerFrom(c))
	if !permitted(c, v, err, "Forbidden") {
		return
	}
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.users.ToggleSavedPost(ctx, v.User, req.PostID)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Post unsaved"
	if saved {
		msg = "Post saved"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
