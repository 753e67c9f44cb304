package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

type OrderController struct {
	Cashier *services.CashierService
	State   *services.DashboardState
	now     func() time.Time
}

func NewOrderController(cashier *services.CashierService, state *services.DashboardState) *OrderController {
	return &OrderController{Cashier: cashier, State: state, now: time.Now}
}

// Dashboard -> every order with live totals, the summary and the active shift
func (oc *OrderController) Dashboard(c *gin.Context) {
	view := services.BuildDashboard(oc.State.Snapshot(), oc.now())
	utils.RespondJSON(c, http.StatusOK, "Dashboard", view)
}

// ListOrders -> ?filter=active|paid|all, active by default
func (oc *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter(c.DefaultQuery("filter", string(services.FilterActive)))
	if !filter.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Message: "Filtr noto'g'ri"})
		return
	}
	orders := services.FilterOrders(oc.State.Orders(), filter, oc.now())
	utils.RespondJSON(c, http.StatusOK, "Buyurtmalar", orders)
}

// GetOrder
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, ok := oc.State.Order(c.Param("order_id"))
	if !ok {
		respondServiceError(c, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Buyurtma", services.NewOrderView(order, oc.now()))
}

type addItemsRequest struct {
	Items []models.ItemRequest `json:"items"`
}

// AddItems
func (oc *OrderController) AddItems(c *gin.Context) {
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}
	order, err := oc.Cashier.AddItems(c.Request.Context(), c.Param("order_id"), req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Taomlar qo'shildi", services.NewOrderView(order, oc.now()))
}

// PrintBill -> pending bill on the selected printer
func (oc *OrderController) PrintBill(c *gin.Context) {
	if err := oc.Cashier.PrintBill(c.Request.Context(), c.Param("order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hisob chop etildi", nil)
}

type mergeRequest struct {
	OrderIDs []string `json:"orderIds"`
}

// MergeOrders -> the first id is the target
func (oc *OrderController) MergeOrders(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errBadRequest)
		return
	}
	merged, err := oc.Cashier.Merge(c.Request.Context(), req.OrderIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Buyurtmalar birlashtirildi", merged)
}
