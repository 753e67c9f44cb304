package services

import (
	"time"

	"github.com/yeremiapane/cashier-desk/models"
)

type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "full"
	PaymentModePartial PaymentMode = "partial"
)

func (m PaymentMode) Valid() bool {
	return m == PaymentModeFull || m == PaymentModePartial
}

// Partition is the payable subset of an order and what it costs.
type Partition struct {
	Mode          PaymentMode        `json:"mode"`
	Items         []models.OrderItem `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	ServiceCharge int64              `json:"serviceCharge"`
	HourlyCharge  int64              `json:"hourlyCharge"`
	AmountDue     int64              `json:"amountDue"`
}

func (p Partition) ItemIDs() []string {
	ids := make([]string, len(p.Items))
	for i, item := range p.Items {
		ids[i] = item.ID
	}
	return ids
}

// PartitionOrder selects what a payment settles.
// Full mode takes every unpaid active item and the order's grand total, hourly charge included.
// Partial mode keeps only requested ids that are still unpaid and active, dropping the rest
// silently, and never includes the hourly charge.
func PartitionOrder(order models.Order, mode PaymentMode, itemIDs []string, now time.Time) (Partition, error) {
	switch mode {
	case PaymentModeFull:
		if order.IsPaid() {
			return Partition{}, ErrOrderAlreadyPaid
		}
		totals := CalculateTotals(order, now)
		return Partition{
			Mode:          mode,
			Items:         order.UnpaidActiveItems(),
			Subtotal:      totals.Subtotal,
			ServiceCharge: totals.ServiceCharge,
			HourlyCharge:  totals.HourlyCharge,
			AmountDue:     totals.GrandTotal,
		}, nil

	case PaymentModePartial:
		wanted := make(map[string]bool, len(itemIDs))
		for _, id := range itemIDs {
			wanted[id] = true
		}
		subset := make([]models.OrderItem, 0, len(itemIDs))
		for _, item := range order.UnpaidActiveItems() {
			if wanted[item.ID] {
				subset = append(subset, item)
			}
		}
		if len(subset) == 0 {
			return Partition{}, NewEmptySelectionError()
		}
		subtotal := ItemsSubtotal(subset)
		service := ServiceCharge(order, subtotal)
		return Partition{
			Mode:          mode,
			Items:         subset,
			Subtotal:      subtotal,
			ServiceCharge: service,
			AmountDue:     subtotal + service,
		}, nil
	}
	return Partition{}, ErrInvalidMode
}

// ApplySettlement rebuilds the order the backend would return after settling itemIDs in
// one session. Used when a partial payment response carries no order body.
// The order only becomes paid when no unpaid active item remains.
func ApplySettlement(order models.Order, itemIDs []string, sessionID string, tender models.PaymentType, paidAt time.Time) models.Order {
	settled := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		settled[id] = true
	}

	out := order
	out.Items = make([]models.OrderItem, len(order.Items))
	copy(out.Items, order.Items)

	at := paidAt
	for i := range out.Items {
		item := &out.Items[i]
		if !settled[item.ID] || !item.IsActive() || item.IsPaid() {
			continue
		}
		_ = item.Settle(models.PartiallySettled(sessionID, &at, tender))
	}

	if AllItemsPaid(out) {
		out.PaymentStatus = models.PaymentStatusPaid
		out.Status = models.OrderStatusPaid
		out.PaidAt = &at
		if out.PaymentType == "" {
			out.PaymentType = tender
		}
		for i := range out.Items {
			if out.Items[i].IsActive() {
				out.Items[i].PromoteSettlement()
			}
		}
	}
	return out
}

// AllItemsPaid is derived from the item list only, never from having just paid.
// An order with no active items is not considered paid.
func AllItemsPaid(order models.Order) bool {
	active := order.ActiveItems()
	if len(active) == 0 {
		return false
	}
	for _, item := range active {
		if !item.IsPaid() {
			return false
		}
	}
	return true
}
