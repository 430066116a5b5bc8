package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/comments"
	"github.com/xmoure/blog-api-server/internal/models"
	"github.com/xmoure/blog-api-server/internal/posts"
	"github.com/xmoure/blog-api-server/internal/users"
	"github.com/xmoure/blog-api-server/pkg/middleware"
)

type CommentsHandler struct {
	comments *comments.Service
	posts    *posts.Service
	users    *users.Service
	policy   *access.Policy
}

func NewCommentsHandler(cs *comments.Service, ps *posts.Service, u *users.Service, policy *access.Policy) *CommentsHandler {
	return &CommentsHandler{comments: cs, posts: ps, users: u, policy: policy}
}

// Register routes under /comments
func (h *CommentsHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/comments")
	g.GET("/:postId", h.List)
	g.POST("/:postId", h.Create)
	g.DELETE("/:id", h.Delete)
}

func (h *CommentsHandler) List(c *gin.Context) {
	post, ok := objectID(c, c.Param("postId"))
	if !ok {
		return
	}
	list, err := h.comments.ListByPost(c.Request.Context(), post, h.users)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type commentRequest struct {
	Description string `json:"description"`
}

func (h *CommentsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.policy.Authenticate(ctx, middleware.CallerFrom(c))
	if !permitted(c, v, err, "Forbidden") {
		return
	}
	postID, ok := objectID(c, c.Param("postId"))
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.posts.Get(ctx, postID); err != nil {
		writeError(c, err)
		return
	}
	cm, err := h.comments.Create(ctx, v.User.ID, postID, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *CommentsHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
		return
	}
	id, ok := objectID(c, c.Param("id"))
	if !ok {
		return
	}
	cm, err := h.comments.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	v, err := h.policy.Decide(ctx, caller, access.ActionDelete, cm.User)
	if !permitted(c, v, err, "You can only delete your own comments") {
		return
	}
	out, err := h.comments.Delete(ctx, cm.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if out == models.NotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment has been deleted"})
}
