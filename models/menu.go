package models

// MenuItem is a food the cashier can add to an order or a saboy. Prices arrive from the
// backend as JSON numbers and are kept as whole so'm.
type MenuItem struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	CategoryID  string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}
