package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/assets"
	"github.com/xmoure/blog-api-server/internal/models"
	"github.com/xmoure/blog-api-server/internal/posts"
	"github.com/xmoure/blog-api-server/internal/users"
	"github.com/xmoure/blog-api-server/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostsHandler holds dependencies
type PostsHandler struct {
	posts  *posts.Service
	users  *users.Service
	policy *access.Policy
	assets assets.Authenticator
}

// NewPostsHandler wires the post routes. A nil authenticator disables upload auth.
func NewPostsHandler(p *posts.Service, u *users.Service, policy *access.Policy, a assets.Authenticator) *PostsHandler {
	return &PostsHandler{posts: p, users: u, policy: policy, assets: a}
}

// Register routes under /posts
func (h *PostsHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/posts")
	p.GET("/upload-auth", h.UploadAuth)
	p.GET("", h.List)
	p.GET("/:slug", h.Get)
	p.POST("", h.Create)
	p.PATCH("/feature", h.Feature)
	p.PATCH("/:id", h.Edit)
	p.DELETE("/:id", h.Delete)
}

func intQuery(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// List serves GET /posts?page&limit&cat&author&search&featured&sort
func (h *PostsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	q := posts.Query{
		Page:     intQuery(c, "page"),
		Limit:    intQuery(c, "limit"),
		Category: strings.TrimSpace(c.Query("cat")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     c.Query("sort"),
	}
	q.Featured, _ = strconv.ParseBool(c.Query("featured"))
	if name := strings.TrimSpace(c.Query("author")); name != "" {
		u, err := h.users.GetByUserName(ctx, name)
		if err != nil {
			writeError(c, err)
			return
		}
		if u == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No posts found"})
			return
		}
		q.Author = &u.ID
	}
	page, err := h.posts.List(ctx, q, h.users)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostsHandler) Get(c *gin.Context) {
	view, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"), h.users)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PostsHandler) Create(c *gin.Context) {
	v, err := h.policy.Authenticate(c.Request.Context(), middleware.CallerFrom(c))
	if !permitted(c, v, err, "Forbidden") {
		return
	}
	var in posts.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.posts.Create(c.Request.Context(), v.User.ID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// loadPost resolves the :id param, writing 400/404 itself.
func (h *PostsHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := objectID(c, c.Param("id"))
	if !ok {
		return nil, false
	}
	p, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return p, true
}

func (h *PostsHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
		return
	}
	p, ok := h.loadPost(c)
	if !ok {
		return
	}
	v, err := h.policy.Decide(ctx, caller, access.ActionDelete, p.User)
	if !permitted(c, v, err, "You can only delete your own posts") {
		return
	}
	out, err := h.posts.Delete(ctx, p.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if out == models.NotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post has been deleted"})
}

type featureRequest struct {
	PostID string `json:"postId" binding:"required"`
}

func (h *PostsHandler) Feature(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.policy.Decide(ctx, middleware.CallerFrom(c), access.ActionFeature, primitive.NilObjectID)
	if !permitted(c, v, err, "You cannot feature posts") {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, ok := objectID(c, req.PostID)
	if !ok {
		return
	}
	p, err := h.posts.ToggleFeatured(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type editRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Content     *string `json:"content"`
	Img         *string `json:"img"`
}

func (h *PostsHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
		return
	}
	p, ok := h.loadPost(c)
	if !ok {
		return
	}
	v, err := h.policy.Decide(ctx, caller, access.ActionEdit, p.User)
	if !permitted(c, v, err, "You can only edit your own posts") {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.posts.Edit(ctx, p.ID, posts.Edit{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Content:     req.Content,
		Img:         req.Img,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadAuth returns short-lived credentials for direct browser uploads.
func (h *PostsHandler) UploadAuth(c *gin.Context) {
	if h.assets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	params, err := h.assets.UploadAuth(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}
