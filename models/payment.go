package models

import (
	"time"
)

// PaymentSplit allocates one settlement amount across the three tenders.
type PaymentSplit struct {
	Cash  int64 `json:"cash"`
	Card  int64 `json:"card"`
	Click int64 `json:"click"`
}

func (p PaymentSplit) Sum() int64 {
	return p.Cash + p.Card + p.Click
}

// PartialPaymentSession is the backend's record of one partial settlement.
type PartialPaymentSession struct {
	SessionID     string            `json:"sessionId"`
	PaidItems     []PartialPaidItem `json:"paidItems"`
	Subtotal      int64             `json:"subtotal"`
	ServiceCharge int64             `json:"serviceCharge"`
	Total         int64             `json:"total"`
	PaymentType   PaymentType       `json:"paymentType"`
	PaidAt        *time.Time        `json:"paidAt,omitempty"`
}

type PartialPaidItem struct {
	ItemID   string `json:"itemId"`
	FoodName string `json:"foodName"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Subtotal int64  `json:"subtotal"`
}

// ItemsPayment is the backend answer to a partial payment. Order is nil when the
// backend left the order body out of the response.
type ItemsPayment struct {
	Order   *Order                `json:"order,omitempty"`
	Session PartialPaymentSession `json:"paymentSession"`
}
