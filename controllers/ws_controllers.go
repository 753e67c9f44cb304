package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/hub"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type WSController struct {
	Hub   *hub.Hub
	State *services.DashboardState
	now   func() time.Time
}

func NewWSController(h *hub.Hub, state *services.DashboardState) *WSController {
	return &WSController{Hub: h, State: state, now: time.Now}
}

// Serve -> websocket feed of the cashier UI; the current dashboard is sent first
func (wc *WSController) Serve(c *gin.Context) {
	hello := hub.Message{
		Event: services.HubDashboard,
		Data:  services.BuildDashboard(wc.State.Snapshot(), wc.now()),
	}
	if err := wc.Hub.Serve(c.Writer, c.Request, &hello); err != nil {
		utils.ErrorLogger.WithError(err).Error("UI websocket upgrade failed")
	}
}
