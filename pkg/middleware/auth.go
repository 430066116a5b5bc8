package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/pkg/logger"
)

// Context keys set by OptionalAuth.
const (
	ClaimsKey = "claims"
	CallerKey = "caller"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RoleFromClaims reads metadata.role, then role. Anything else is left to
// access.NewCaller, which treats an empty role as a regular user.
func RoleFromClaims(claims map[string]interface{}) string {
	if md, ok := claims["metadata"].(map[string]interface{}); ok {
		if r, ok := md["role"].(string); ok && r != "" {
			return r
		}
	}
	if r, ok := claims["role"].(string); ok {
		return r
	}
	return ""
}

// OptionalAuth verifies a Bearer token when one is present. Requests with a
// missing or invalid token continue anonymously; handlers decide access.
func OptionalAuth(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" || ver == nil {
			c.Set(CallerKey, access.Caller{})
			c.Next()
			return
		}
		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			logger.Debugf("auth: token rejected: %v", err)
			c.Set(CallerKey, access.Caller{})
			c.Next()
			return
		}
		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			logger.Debugf("auth: failed to parse claims: %v", err)
			c.Set(CallerKey, access.Caller{})
			c.Next()
			return
		}
		sub, _ := claims["sub"].(string)
		c.Set(ClaimsKey, claims)
		c.Set(CallerKey, access.NewCaller(sub, RoleFromClaims(claims)))
		c.Next()
	}
}

// CallerFrom returns the caller stored by OptionalAuth, or an anonymous one.
func CallerFrom(c *gin.Context) access.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(access.Caller); ok {
			return caller
		}
	}
	return access.Caller{}
}
