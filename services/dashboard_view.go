package services

import (
	"time"

	"github.com/yeremiapane/cashier-desk/models"
)

// OrderFilter selects which orders a list shows.
type OrderFilter string

const (
	FilterActive OrderFilter = "active"
	FilterPaid   OrderFilter = "paid"
	FilterAll    OrderFilter = "all"
)

func (f OrderFilter) Valid() bool {
	switch f {
	case FilterActive, FilterPaid, FilterAll:
		return true
	}
	return false
}

// OrderView is an order plus the figures computed for it at render time.
type OrderView struct {
	models.Order
	Totals      Totals `json:"totals"`
	IsCancelled bool   `json:"isCancelled"`
	DisplayName string `json:"displayName"`
	PaidTotal   int64  `json:"paidTotal"`
	UnpaidTotal int64  `json:"unpaidTotal"`
}

type DashboardView struct {
	Orders   []OrderView         `json:"orders"`
	Summary  models.DailySummary `json:"summary"`
	Shift    *models.Shift       `json:"shift"`
	LoadedAt time.Time           `json:"loadedAt"`
}

func NewOrderView(order models.Order, now time.Time) OrderView {
	paid, unpaid := paidAndUnpaid(order)
	return OrderView{
		Order:       order,
		Totals:      CalculateTotals(order, now),
		IsCancelled: order.IsEffectivelyCancelled(),
		DisplayName: order.DisplayName(),
		PaidTotal:   paid,
		UnpaidTotal: unpaid,
	}
}

// Matches -> active: open and not cancelled; paid: settled; all: everything
func (f OrderFilter) Matches(order models.Order) bool {
	switch f {
	case FilterActive:
		return !order.IsPaid() && !order.IsEffectivelyCancelled()
	case FilterPaid:
		return order.IsPaid()
	}
	return true
}

// FilterOrders keeps the backend's order and never returns nil.
func FilterOrders(orders []models.Order, filter OrderFilter, now time.Time) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		if filter.Matches(order) {
			views = append(views, NewOrderView(order, now))
		}
	}
	return views
}

func BuildDashboard(snap Snapshot, now time.Time) DashboardView {
	return DashboardView{
		Orders:   FilterOrders(snap.Orders, FilterAll, now),
		Summary:  snap.Summary,
		Shift:    snap.Shift,
		LoadedAt: snap.LoadedAt,
	}
}
