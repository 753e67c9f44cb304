package models

import "time"

// PaymentReceipt is the structured data sent to the print agent's payment endpoint.
type PaymentReceipt struct {
	OrderID        string        `json:"orderId"`
	OrderNumber    int           `json:"orderNumber"`
	TableName      string        `json:"tableName"`
	WaiterName     string        `json:"waiterName"`
	CashierName    string        `json:"cashierName,omitempty"`
	Items          []ReceiptLine `json:"items"`
	Subtotal       int64         `json:"subtotal"`
	ServiceFee     int64         `json:"serviceFee"`
	HourlyCharge   int64         `json:"hourlyCharge,omitempty"`
	Total          int64         `json:"total"`
	PaymentType    PaymentType   `json:"paymentType,omitempty"`
	PaymentSplit   *PaymentSplit `json:"paymentSplit,omitempty"`
	Comment        string        `json:"comment,omitempty"`
	RestaurantName string        `json:"restaurantName"`
	IsPaid         bool          `json:"isPaid"`
	Date           time.Time     `json:"date"`
}

type ReceiptLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func (l ReceiptLine) Total() int64 {
	return l.Price * int64(l.Quantity)
}
