package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/slug"
	"github.com/xmoure/blog-api-server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgNotAuthenticated = "Not authenticated!"
	msgUserNotFound     = "User not found!"
	msgInternal         = "Internal server error"
	msgSlugTaken        = "Slug already taken, retry"
)

// writeError maps the apperr taxonomy onto status codes. Anything unexpected is
// logged and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, slug.ErrProbeExhausted):
		logger.Warnf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusConflict, gin.H{"error": msgSlugTaken})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// permitted writes the rejection for a non-permit verdict and reports whether
// the handler may continue.
func permitted(c *gin.Context, v access.Verdict, err error, forbidden string) bool {
	if err != nil {
		writeError(c, err)
		return false
	}
	switch v.Decision {
	case access.Permit:
		return true
	case access.RejectUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
	case access.RejectNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden})
	}
	return false
}

func objectID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
