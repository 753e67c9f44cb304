package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type MenuController struct {
	Cashier *services.CashierService
}

func NewMenuController(cashier *services.CashierService) *MenuController {
	return &MenuController{Cashier: cashier}
}

// GetMenu -> foods for the saboy and add-items pickers; ?available=true hides unavailable ones
func (mc *MenuController) GetMenu(c *gin.Context) {
	menu, err := mc.Cashier.Menu(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if c.Query("available") == "true" {
		available := menu[:0]
		for _, item := range menu {
			if item.IsAvailable {
				available = append(available, item)
			}
		}
		menu = available
	}
	utils.RespondJSON(c, http.StatusOK, "Menyu", menu)
}
