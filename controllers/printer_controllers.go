package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/middlewares"
	"github.com/yeremiapane/cashier-desk/printer"
	"github.com/yeremiapane/cashier-desk/utils"
)

// PrintAgent is the part of the local print agent the controllers drive directly.
type PrintAgent interface {
	Printers(ctx context.Context) ([]printer.PrinterInfo, error)
	Healthy(ctx context.Context) bool
	PrintTest(ctx context.Context, printerName, restaurantName string) error
	PrintHTML(ctx context.Context, printerName, html string) error
}

type PrinterController struct {
	Agent PrintAgent
	Store SettingsStore
}

func NewPrinterController(agent PrintAgent, store SettingsStore) *PrinterController {
	return &PrinterController{Agent: agent, Store: store}
}

// ListPrinters
func (pc *PrinterController) ListPrinters(c *gin.Context) {
	printers, err := pc.Agent.Printers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Printerlar", gin.H{
		"printers": printers,
		"selected": pc.Store.SelectedPrinter(),
	})
}

// Status -> whether the print agent answers
func (pc *PrinterController) Status(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Printer holati", gin.H{
		"online":   pc.Agent.Healthy(c.Request.Context()),
		"selected": pc.Store.SelectedPrinter(),
	})
}

type testPrintRequest struct {
	PrinterName string `json:"printerName"`
}

// TestPrint -> test page on the given printer, the selected one by default
func (pc *PrinterController) TestPrint(c *gin.Context) {
	var req testPrintRequest
	// an empty body means the selected printer
	_ = c.ShouldBindJSON(&req)
	name := req.PrinterName
	if name == "" {
		name = pc.Store.SelectedPrinter()
	}

	restaurant := ""
	if session, ok := middlewares.CurrentSession(c); ok {
		restaurant = session.Restaurant.Name
	}
	if err := pc.Agent.PrintTest(c.Request.Context(), name, restaurant); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Test sahifa chop etildi", nil)
}
