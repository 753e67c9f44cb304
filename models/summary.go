package models

import "time"

// DailySummary is owned and computed by the backend; the desk only displays it.
type DailySummary struct {
	TotalOrders    int   `json:"totalOrders"`
	ActiveOrders   int   `json:"activeOrders"`
	PaidOrders     int   `json:"paidOrders"`
	TotalRevenue   int64 `json:"totalRevenue"`
	CashRevenue    int64 `json:"cashRevenue"`
	CardRevenue    int64 `json:"cardRevenue"`
	ClickRevenue   int64 `json:"clickRevenue"`
	ServiceRevenue int64 `json:"serviceRevenue,omitempty"`
	CancelledItems int   `json:"cancelledItems,omitempty"`
}

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

type Shift struct {
	ID          string      `json:"_id"`
	ShiftNumber int         `json:"shiftNumber"`
	Status      ShiftStatus `json:"status"`
	OpenedAt    time.Time   `json:"openedAt"`
	ClosedAt    *time.Time  `json:"closedAt,omitempty"`
}

func (s *Shift) IsOpen() bool {
	return s != nil && s.Status == ShiftStatusOpen
}

type WaiterStat struct {
	WaiterID   string `json:"waiterId,omitempty"`
	Name       string `json:"name"`
	Orders     int    `json:"orders"`
	Revenue    int64  `json:"revenue"`
	ServiceFee int64  `json:"serviceFee,omitempty"`
}

// CancelledLine is one cancelled item listed in the end-of-day report.
type CancelledLine struct {
	OrderNumber int    `json:"orderNumber"`
	TableName   string `json:"tableName"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Reason      string `json:"reason,omitempty"`
}

// DailyReport is everything printed on the end-of-day slip.
type DailyReport struct {
	RestaurantName string          `json:"restaurantName"`
	CashierName    string          `json:"cashierName"`
	Shift          *Shift          `json:"shift,omitempty"`
	Summary        DailySummary    `json:"summary"`
	Waiters        []WaiterStat    `json:"waiters"`
	Cancelled      []CancelledLine `json:"cancelled"`
	UnpaidTotal    int64           `json:"unpaidTotal"`
	Date           time.Time       `json:"date"`
}
