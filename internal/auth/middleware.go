package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated identity
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyIdentity = "auth_identity"
)

// publicPaths do not require an authenticated session.
var publicPaths = map[string]bool{
	"/health":      true,
	"/ping":        true,
	"/signup":      true,
	"/login":       true,
	"/static":      true, // prefix
	"/favicon.ico": true,
}

// RequireSession returns a middleware that rejects unauthenticated
// requests to non-public paths with 401 and injects the session
// identity into the Gin context for everything else.
func RequireSession(sm *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		identity := sm.GetIdentity(c.Request)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(ContextKeyUserID, identity.ID)
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetUserID extracts the authenticated user's id from the Gin context.
// Returns 0 when no session is active.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func isPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	for prefix := range publicPaths {
		if strings.HasSuffix(prefix, "static") && strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
