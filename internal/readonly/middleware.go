// Package readonly implements the maintenance mode in which the catalog can
// be browsed but not changed.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey stores the read-only flag in the gin context for templates.
const ContextKey = "read_only"

const blockedMessage = "The catalog is in read-only mode"

// Middleware blocks write operations while read-only mode is on.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a read-only mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.enabled)

		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// respondBlocked sends a 403 in the shape the caller expects.
func (m *Middleware) respondBlocked(c *gin.Context) {
	if isStructured(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success":   false,
			"summary":   blockedMessage,
			"read_only": true,
		})
		return
	}

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Reswap", "none")
	}
	c.String(http.StatusForbidden, blockedMessage)
	c.Abort()
}

func isStructured(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json") ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
