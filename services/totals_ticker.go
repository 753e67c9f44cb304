package services

import (
	"time"

	"github.com/yeremiapane/cashier-desk/utils"
)

// DefaultTickInterval refreshes hourly-billed totals once a minute.
const DefaultTickInterval = 60 * time.Second

// OrderTotals is one entry of a totals_tick push.
type OrderTotals struct {
	OrderID string `json:"orderId"`
	Totals
}

// TotalsTicker recomputes the totals of open hourly-billed orders on a timer so the UI
// follows elapsed time without a backend round trip.
type TotalsTicker struct {
	State    *DashboardState
	Hub      Broadcaster
	Interval time.Duration
	StopChan chan struct{}
	now      func() time.Time
}

func NewTotalsTicker(state *DashboardState, hub Broadcaster) *TotalsTicker {
	return &TotalsTicker{
		State:    state,
		Hub:      hub,
		Interval: DefaultTickInterval,
		StopChan: make(chan struct{}),
		now:      time.Now,
	}
}

func (tt *TotalsTicker) Start() {
	go func() {
		ticker := time.NewTicker(tt.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tt.Tick()
			case <-tt.StopChan:
				return
			}
		}
	}()
}

func (tt *TotalsTicker) Stop() {
	close(tt.StopChan)
}

// Tick pushes fresh totals for every open order with an hourly charge. Nothing is sent
// when no such order exists.
func (tt *TotalsTicker) Tick() []OrderTotals {
	now := tt.now()
	var out []OrderTotals
	for _, order := range tt.State.Orders() {
		if order.IsPaid() || !order.HasHourlyCharge || order.IsEffectivelyCancelled() {
			continue
		}
		out = append(out, OrderTotals{OrderID: order.ID, Totals: CalculateTotals(order, now)})
	}
	if len(out) == 0 {
		return nil
	}
	utils.InfoLogger.WithField("orders", len(out)).Debug("Hourly totals refreshed")
	if tt.Hub != nil {
		tt.Hub.Broadcast(HubTotalsTick, out)
	}
	return out
}
