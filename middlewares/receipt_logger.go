package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/utils"
)

func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		utils.InfoLogger.WithField("order_id", orderID).Debug("Rendering receipt")

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.WithField("order_id", orderID).Info("Receipt rendered")
		} else {
			utils.ErrorLogger.WithField("order_id", orderID).Error("Failed to render receipt")
		}
	}
}
