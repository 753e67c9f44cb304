package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

var errBadRequest = &services.ValidationError{Message: "So'rov noto'g'ri"}

// statusFor -> HTTP status of a service error by its kind
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindBackend:
		return http.StatusConflict
	case services.KindMalformed, services.KindNetwork, services.KindPrint:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, statusFor(err), err)
}
