package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware refuses the upgrade before a login; errors cannot be sent as JSON after it.
func WebSocketAuthMiddleware(sessions SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Session()
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}
