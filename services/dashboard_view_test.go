package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cashier-desk/models"
)

func TestOrderFilter(t *testing.T) {
	open := dineIn("open", item("a", 1000, 1))
	paid := paidOrder(dineIn("paid", item("b", 1000, 1)))
	cancelled := dineIn("cancelled", cancelledItem("c", 1000, 1))
	explicit := dineIn("explicit", item("d", 1000, 1))
	explicit.Status = models.OrderStatusCancelled
	orders := []models.Order{open, paid, cancelled, explicit}

	ids := func(views []OrderView) []string {
		out := []string{}
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	assert.Equal(t, []string{"open"}, ids(FilterOrders(orders, FilterActive, testNow)))
	assert.Equal(t, []string{"paid"}, ids(FilterOrders(orders, FilterPaid, testNow)))
	assert.Equal(t, []string{"open", "paid", "cancelled", "explicit"}, ids(FilterOrders(orders, FilterAll, testNow)))
	assert.NotNil(t, FilterOrders(nil, FilterActive, testNow))

	assert.True(t, FilterPaid.Valid())
	assert.False(t, OrderFilter("closed").Valid())
}

func TestNewOrderView(t *testing.T) {
	o := dineIn("o1", paidItem("a", 30000, 1, "s1"), item("b", 5000, 2), cancelledItem("c", 9000, 1))

	view := NewOrderView(o, testNow)
	assert.Equal(t, "Stol 4", view.DisplayName)
	assert.False(t, view.IsCancelled)
	assert.Equal(t, int64(30000), view.PaidTotal)
	assert.Equal(t, int64(10000), view.UnpaidTotal)
	assert.Equal(t, Totals{Subtotal: 10000, ServiceCharge: 1000, GrandTotal: 11000}, view.Totals)
}

func TestBuildDashboard(t *testing.T) {
	shift := &models.Shift{ID: "sh1", Status: models.ShiftStatusOpen}
	snap := Snapshot{
		Orders:   []models.Order{dineIn("a", item("x", 1000, 1))},
		Summary:  models.DailySummary{TotalOrders: 1},
		Shift:    shift,
		LoadedAt: testNow,
	}

	view := BuildDashboard(snap, testNow)
	require.Len(t, view.Orders, 1)
	assert.Equal(t, int64(1100), view.Orders[0].Totals.GrandTotal)
	assert.Equal(t, 1, view.Summary.TotalOrders)
	assert.Equal(t, shift, view.Shift)
	assert.Equal(t, testNow, view.LoadedAt)
}
