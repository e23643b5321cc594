package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chrona/internal/authz"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// TokenParser turns a bearer token into the user id it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// AuthMiddleware resolves the optional actor. A request without an Authorization
// header proceeds anonymously; a header that is present but invalid is rejected.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		userID, err := parser.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// ActorFrom returns the actor set by AuthMiddleware, or the anonymous actor.
func ActorFrom(c *gin.Context) authz.Actor {
	if v, ok := c.Get(ContextUserID); ok {
		if id, _ := v.(string); id != "" {
			return authz.User(id)
		}
	}
	return authz.Anonymous()
}
