package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/middlewares"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/printer"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type ReportController struct {
	Cashier *services.CashierService
}

func NewReportController(cashier *services.CashierService) *ReportController {
	return &ReportController{Cashier: cashier}
}

// WaiterStats -> per waiter orders and revenue of the active shift; ?format=text for the slip
func (rc *ReportController) WaiterStats(c *gin.Context) {
	stats, err := rc.Cashier.WaiterStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, printer.WaiterReportText(restaurantName(c), stats, time.Now()))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Ofitsiantlar hisoboti", stats)
}

// CancelledItems -> cancelled lines of today's orders
func (rc *ReportController) CancelledItems(c *gin.Context) {
	report, err := rc.Cashier.DailyReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, printer.CancelledReportText(report.RestaurantName, report.Cancelled, report.Date))
		return
	}
	cancelled := report.Cancelled
	if cancelled == nil {
		cancelled = []models.CancelledLine{}
	}
	utils.RespondJSON(c, http.StatusOK, "Bekor qilinganlar", cancelled)
}

// DailyReport -> ?format=text returns the slip exactly as it would print
func (rc *ReportController) DailyReport(c *gin.Context) {
	report, err := rc.Cashier.DailyReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, printer.DailyReportText(report))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kunlik hisobot", report)
}

// PrintDailyReport
func (rc *ReportController) PrintDailyReport(c *gin.Context) {
	if err := rc.Cashier.PrintDailyReport(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hisobot chop etildi", nil)
}

func restaurantName(c *gin.Context) string {
	if session, ok := middlewares.CurrentSession(c); ok {
		return session.Restaurant.Name
	}
	return ""
}
