package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

const SessionKey = "session"

// SessionProvider exposes the desk's cached backend login.
type SessionProvider interface {
	Session() (models.Session, bool)
}

// AuthMiddleware lets a request through only while the desk holds an unexpired session.
// The browser UI never sees the backend token; it is kept by the desk.
func AuthMiddleware(sessions SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Session()
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, services.ErrNotLoggedIn)
			c.Abort()
			return
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}

// CurrentSession -> session stored by AuthMiddleware
func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
