package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/printer"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type ReceiptController struct {
	Cashier *services.CashierService
	Agent   PrintAgent
	Store   SettingsStore
}

func NewReceiptController(cashier *services.CashierService, agent PrintAgent, store SettingsStore) *ReceiptController {
	return &ReceiptController{Cashier: cashier, Agent: agent, Store: store}
}

// GetReceipt -> receipt (paid) or bill (open) as printable HTML
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	receipt, err := rc.Cashier.Receipt(c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	html, err := printer.ReceiptHTML(receipt)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// DownloadReceiptPDF
func (rc *ReceiptController) DownloadReceiptPDF(c *gin.Context) {
	receipt, err := rc.Cashier.Receipt(c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pdf, err := printer.ReceiptPDF(receipt)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	name := fmt.Sprintf("chek-%s.pdf", receipt.OrderID)
	if receipt.OrderNumber > 0 {
		name = fmt.Sprintf("chek-%d.pdf", receipt.OrderNumber)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ReprintReceipt sends the rendered HTML receipt to the selected printer again.
func (rc *ReceiptController) ReprintReceipt(c *gin.Context) {
	receipt, err := rc.Cashier.Receipt(c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	html, err := printer.ReceiptHTML(receipt)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := rc.Agent.PrintHTML(c.Request.Context(), rc.Store.SelectedPrinter(), html); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chek qayta chop etildi", nil)
}
