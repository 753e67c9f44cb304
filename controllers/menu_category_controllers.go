package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type MenuCategoryController struct {
	Cashier *services.CashierService
}

func NewMenuCategoryController(cashier *services.CashierService) *MenuCategoryController {
	return &MenuCategoryController{Cashier: cashier}
}

// GetCategories
func (mcc *MenuCategoryController) GetCategories(c *gin.Context) {
	cats, err := mcc.Cashier.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kategoriyalar", cats)
}
