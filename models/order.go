package models

import (
	"strconv"
	"time"
)

type OrderType string

const (
	OrderTypeDineIn OrderType = "dine-in"
	OrderTypeSaboy  OrderType = "saboy"
)

type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type PaymentType string

const (
	PaymentTypeCash  PaymentType = "cash"
	PaymentTypeCard  PaymentType = "card"
	PaymentTypeClick PaymentType = "click"
)

// Valid -> only the three tenders the till accepts
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentTypeCash, PaymentTypeCard, PaymentTypeClick:
		return true
	}
	return false
}

type Waiter struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Order is the canonical local snapshot of a guest's tab. Money fields are whole so'm.
// Subtotal, ServiceCharge and GrandTotal are the last figures reported by the backend;
// use services.CalculateTotals for the live numbers of an open order.
type Order struct {
	ID          string      `json:"_id"`
	OrderNumber int         `json:"orderNumber"`
	SaboyNumber *int        `json:"saboyNumber,omitempty"`
	OrderType   OrderType   `json:"orderType"`
	Status      OrderStatus `json:"status"`
	TableNumber int         `json:"tableNumber,omitempty"`
	TableName   string      `json:"tableName,omitempty"`
	Waiter      Waiter      `json:"waiter"`
	Comment     string      `json:"comment,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	PaidAt      *time.Time  `json:"paidAt,omitempty"`

	Subtotal             int64    `json:"total"`
	ServiceCharge        int64    `json:"serviceFee"`
	HourlyCharge         int64    `json:"hourlyCharge,omitempty"`
	GrandTotal           int64    `json:"grandTotal"`
	ServiceChargePercent *float64 `json:"serviceChargePercent,omitempty"`

	HasHourlyCharge    bool  `json:"hasHourlyCharge,omitempty"`
	HourlyChargeAmount int64 `json:"hourlyChargeAmount,omitempty"`

	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentType   PaymentType   `json:"paymentType,omitempty"`
	PaymentSplit  *PaymentSplit `json:"paymentSplit,omitempty"`

	Items []OrderItem `json:"items"`
}

func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

func (o Order) IsTakeaway() bool {
	return o.OrderType == OrderTypeSaboy
}

// ActiveItems -> items that are neither soft-deleted nor cancelled
func (o Order) ActiveItems() []OrderItem {
	active := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsActive() {
			active = append(active, item)
		}
	}
	return active
}

// UnpaidActiveItems -> active items not yet settled by any payment session
func (o Order) UnpaidActiveItems() []OrderItem {
	unpaid := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsActive() && !item.IsPaid() {
			unpaid = append(unpaid, item)
		}
	}
	return unpaid
}

// IsEffectivelyCancelled reports whether the order is cancelled either explicitly or
// because every non-deleted item was cancelled. The two sources are not synchronized
// by the backend, so this is always derived and never written back.
func (o Order) IsEffectivelyCancelled() bool {
	if o.Status == OrderStatusCancelled {
		return true
	}
	seen := false
	for _, item := range o.Items {
		if item.IsDeleted {
			continue
		}
		seen = true
		if item.Status != ItemStatusCancelled {
			return false
		}
	}
	return seen
}

// DisplayName -> "Stol 4" / "Saboy #12" style label used on receipts
func (o Order) DisplayName() string {
	if o.IsTakeaway() {
		if o.SaboyNumber != nil {
			return "Saboy #" + strconv.Itoa(*o.SaboyNumber)
		}
		return "Saboy"
	}
	if o.TableName != "" {
		return o.TableName
	}
	if o.TableNumber > 0 {
		return "Stol " + strconv.Itoa(o.TableNumber)
	}
	return "-"
}
