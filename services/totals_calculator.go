package services

import (
	"math"
	"time"

	"github.com/yeremiapane/cashier-desk/models"
)

// DefaultServiceChargePercent applies to dine-in orders without an explicit override.
const DefaultServiceChargePercent = 10.0

// Totals are whole so'm.
type Totals struct {
	Subtotal      int64 `json:"subtotal"`
	ServiceCharge int64 `json:"serviceCharge"`
	HourlyCharge  int64 `json:"hourlyCharge"`
	GrandTotal    int64 `json:"grandTotal"`
}

// CalculateTotals computes the live figures of an order's unpaid active items.
// A paid order returns the backend's figures untouched: its hourly charge was frozen
// at payment time and cannot be rebuilt from now.
func CalculateTotals(order models.Order, now time.Time) Totals {
	if order.IsPaid() {
		return Totals{
			Subtotal:      order.Subtotal,
			ServiceCharge: order.ServiceCharge,
			HourlyCharge:  order.HourlyCharge,
			GrandTotal:    order.GrandTotal,
		}
	}

	subtotal := ItemsSubtotal(order.UnpaidActiveItems())
	service := ServiceCharge(order, subtotal)
	hourly := HourlyCharge(order, now)

	return Totals{
		Subtotal:      subtotal,
		ServiceCharge: service,
		HourlyCharge:  hourly,
		GrandTotal:    subtotal + service + hourly,
	}
}

// ItemsSubtotal -> Σ price × quantity over active items only
func ItemsSubtotal(items []models.OrderItem) int64 {
	var sum int64
	for _, item := range items {
		if !item.IsActive() {
			continue
		}
		sum += item.LineTotal()
	}
	return sum
}

// ServiceCharge applies the order's percentage to an arbitrary subtotal, half-up.
// Saboy orders never carry a service charge.
func ServiceCharge(order models.Order, subtotal int64) int64 {
	if order.IsTakeaway() || subtotal <= 0 {
		return 0
	}
	pct := DefaultServiceChargePercent
	if order.ServiceChargePercent != nil && *order.ServiceChargePercent >= 0 {
		pct = *order.ServiceChargePercent
	}
	// percent in basis points keeps the rounding in integer space
	bp := int64(math.Round(pct * 100))
	return (subtotal*bp + 5000) / 10000
}

// HourlyCharge bills every started hour since the order was created, one hour minimum.
func HourlyCharge(order models.Order, now time.Time) int64 {
	if !order.HasHourlyCharge || order.HourlyChargeAmount <= 0 {
		return 0
	}
	return ElapsedHours(order.CreatedAt, now) * order.HourlyChargeAmount
}

// ElapsedHours -> ceil(max(1, hours since createdAt)); unknown creation time counts as one hour
func ElapsedHours(createdAt, now time.Time) int64 {
	if createdAt.IsZero() {
		return 1
	}
	hours := now.Sub(createdAt).Hours()
	if hours < 1 {
		return 1
	}
	return int64(math.Ceil(hours))
}
