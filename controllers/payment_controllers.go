package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type PaymentController struct {
	Cashier *services.CashierService
}

func NewPaymentController(cashier *services.CashierService) *PaymentController {
	return &PaymentController{Cashier: cashier}
}

type quoteRequest struct {
	Mode    services.PaymentMode `json:"mode"`
	ItemIDs []string             `json:"itemIds"`
}

// Quote -> amount due for a mode and selection, nothing is charged
func (pc *PaymentController) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = services.PaymentModeFull
	}
	if !req.Mode.Valid() {
		respondServiceError(c, services.ErrInvalidMode)
		return
	}
	part, err := pc.Cashier.Quote(c.Param("order_id"), req.Mode, req.ItemIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "To'lov hisobi", part)
}

// Pay -> full or partial payment; a failed receipt print comes back as data.printError
func (pc *PaymentController) Pay(c *gin.Context) {
	var req services.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = services.PaymentModeFull
	}
	result, err := pc.Cashier.Pay(c.Request.Context(), c.Param("order_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "To'lov qabul qilindi", result)
}

type saboyRequest struct {
	Items        []models.ItemRequest `json:"items"`
	PaymentType  models.PaymentType   `json:"paymentType"`
	PaymentSplit *models.PaymentSplit `json:"paymentSplit"`
}

// CreateSaboy -> takeaway order created and paid at once
func (pc *PaymentController) CreateSaboy(c *gin.Context) {
	var req saboyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}
	result, err := pc.Cashier.CreateSaboy(c.Request.Context(), req.Items, req.PaymentType, req.PaymentSplit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Saboy buyurtma yaratildi", result)
}
