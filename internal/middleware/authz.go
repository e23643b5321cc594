package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireActor rejects anonymous requests on routes that only make sense for a
// signed-in user.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).IsAnonymous() {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
