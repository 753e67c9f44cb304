package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

var errRoleDenied = &services.ValidationError{Message: "Bu amal uchun ruxsat yo'q"}

// RoleCheck -> only staff whose role is in allowed may pass; an empty list allows every role
func RoleCheck(allowed ...string) gin.HandlerFunc {
	roles := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			roles[r] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if len(roles) == 0 {
			c.Next()
			return
		}
		session, ok := CurrentSession(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, services.ErrNotLoggedIn)
			c.Abort()
			return
		}
		if _, ok := roles[strings.ToLower(session.User.Role)]; !ok {
			utils.InfoLogger.WithFields(logrus.Fields{
				"user": session.User.Name,
				"role": session.User.Role,
			}).Warn("Role not allowed at the cashier desk")
			utils.RespondError(c, http.StatusForbidden, errRoleDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}
