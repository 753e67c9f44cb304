package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// DefaultErrorMessage is shown when an error carries no cashier-facing text.
const DefaultErrorMessage = "Xatolik yuz berdi"

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError never leaks the raw error; the cashier sees UserMessage(err).
func RespondError(c *gin.Context, code int, err error) {
	if err != nil && code >= 500 {
		ErrorLogger.WithFields(map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: UserMessage(err),
		Data:    nil,
	})
}

// UserMessage -> localized text of the first error in the chain that has one
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if err != nil && errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return DefaultErrorMessage
}
