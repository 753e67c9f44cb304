package models

// Realtime event names pushed by the backend.
const (
	EventNewOrder            = "new-order"
	EventOrderUpdated        = "order-updated"
	EventOrderPaid           = "order-paid"
	EventItemStatusChanged   = "order-item-status-changed"
	EventItemsAdded          = "order-items-added"
	EventOrdersMerged        = "orders-merged"
	EventShiftOpened         = "shift-opened"
	EventShiftClosed         = "shift-closed"
	EventPrintCheckRequested = "print-check-requested"
	EventJoinRestaurant      = "join-restaurant"

	// emitted locally by the realtime client
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

// Event is a realtime push reduced to what the desk acts on. The payload itself is never
// applied to local state; an event only signals that state should be fetched again.
type Event struct {
	Name      string `json:"event"`
	OrderID   string `json:"orderId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
