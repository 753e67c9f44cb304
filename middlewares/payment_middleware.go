package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/utils"
)

// PaymentSecurityHeaders keeps payment responses out of every cache.
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// LogPaymentRequest writes one audit line per money-moving request.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"order_id":   c.Param("order_id"),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString(RequestIDKey),
		}
		if session, ok := CurrentSession(c); ok {
			fields["cashier"] = session.User.Name
		}
		if c.Writer.Status() >= 400 {
			utils.ErrorLogger.WithFields(fields).Error("Payment request rejected")
			return
		}
		utils.InfoLogger.WithFields(fields).Info("Payment request")
	}
}
