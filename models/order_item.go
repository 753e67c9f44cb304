package models

import (
	"encoding/json"
	"errors"
	"time"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
	ItemStatusCancelled ItemStatus = "cancelled"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady, ItemStatusServed, ItemStatusCancelled:
		return true
	}
	return false
}

// ErrSettleCancelledItem is returned when a payment session tries to settle a cancelled item.
var ErrSettleCancelledItem = errors.New("cancelled item cannot be settled")

// OrderItem is one line of an order. The kitchen owns Status; payments own the settlement,
// which is only reachable through Settle so a cancelled item can never be marked paid.
type OrderItem struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Price        int64      `json:"price"`
	Quantity     int        `json:"quantity"`
	Status       ItemStatus `json:"status"`
	IsDeleted    bool       `json:"isDeleted,omitempty"`
	ReadyAt      *time.Time `json:"readyAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`

	settlement Settlement
}

// IsActive -> not soft-deleted and not cancelled
func (i OrderItem) IsActive() bool {
	return !i.IsDeleted && i.Status != ItemStatusCancelled
}

func (i OrderItem) IsPaid() bool {
	return i.IsActive() && i.settlement.IsPaid()
}

// LineTotal -> price × quantity
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

func (i OrderItem) Settlement() Settlement {
	return i.settlement
}

// Settle attaches a settlement to the item. Settling an already paid item keeps the
// original settlement; paid items are immutable from the till's point of view.
func (i *OrderItem) Settle(s Settlement) error {
	if i.Status == ItemStatusCancelled {
		return ErrSettleCancelledItem
	}
	if i.settlement.IsPaid() && s.IsPaid() {
		return nil
	}
	i.settlement = s
	return nil
}

// PromoteSettlement -> a partial settlement becomes full once the whole order is paid
func (i *OrderItem) PromoteSettlement() {
	if i.settlement.Kind() == SettlementPartiallySettled {
		i.settlement.kind = SettlementFullySettled
	}
}

// MarshalJSON flattens the settlement into the backend's isPaid/paidAt/paymentSessionId fields.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type alias OrderItem
	return json.Marshal(struct {
		alias
		IsPaid           bool        `json:"isPaid"`
		PaidAt           *time.Time  `json:"paidAt,omitempty"`
		PaymentSessionID string      `json:"paymentSessionId,omitempty"`
		ItemPaymentType  PaymentType `json:"itemPaymentType,omitempty"`
	}{
		alias:            alias(i),
		IsPaid:           i.settlement.IsPaid(),
		PaidAt:           i.settlement.PaidAt(),
		PaymentSessionID: i.settlement.SessionID(),
		ItemPaymentType:  i.settlement.Tender(),
	})
}

type SettlementKind string

const (
	SettlementUnpaid           SettlementKind = "unpaid"
	SettlementPartiallySettled SettlementKind = "partially_settled"
	SettlementFullySettled     SettlementKind = "fully_settled"
)

// Settlement is the payment side of an item's lifecycle:
// Unpaid, PartiallySettled (paid by a partial session while the order stays open) or
// FullySettled (paid as part of the order's final settlement).
// The zero value is Unpaid.
type Settlement struct {
	kind      SettlementKind
	sessionID string
	paidAt    *time.Time
	tender    PaymentType
}

func Unpaid() Settlement {
	return Settlement{kind: SettlementUnpaid}
}

func PartiallySettled(sessionID string, paidAt *time.Time, tender PaymentType) Settlement {
	return Settlement{kind: SettlementPartiallySettled, sessionID: sessionID, paidAt: paidAt, tender: tender}
}

func FullySettled(sessionID string, paidAt *time.Time, tender PaymentType) Settlement {
	return Settlement{kind: SettlementFullySettled, sessionID: sessionID, paidAt: paidAt, tender: tender}
}

func (s Settlement) Kind() SettlementKind {
	if s.kind == "" {
		return SettlementUnpaid
	}
	return s.kind
}

func (s Settlement) IsPaid() bool {
	k := s.Kind()
	return k == SettlementPartiallySettled || k == SettlementFullySettled
}

func (s Settlement) SessionID() string {
	return s.sessionID
}

func (s Settlement) PaidAt() *time.Time {
	return s.paidAt
}

func (s Settlement) Tender() PaymentType {
	return s.tender
}

// ItemRequest is a menu line the cashier adds to an order or to a new saboy.
type ItemRequest struct {
	FoodID   string `json:"foodId" binding:"required"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity" binding:"required"`
}
