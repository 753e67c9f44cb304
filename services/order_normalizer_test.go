package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cashier-desk/models"
)

func TestNormalizeOrder_MergesItemContainers(t *testing.T) {
	raw := `{
		"_id": "o1",
		"orderNumber": 12,
		"items": [{"_id": "a", "name": "Osh", "price": 30000, "quantity": 2, "status": "served"}],
		"orderItems": [
			{"_id": "a", "name": "Osh (dup)", "price": 1, "quantity": 1},
			{"_id": "b", "foodName": "Choy", "price": 5000, "quantity": 1, "status": "ready"}
		],
		"selectFoods": [
			{"_id": "c", "food": {"name": "Non"}, "price": 4000, "quantity": 3},
			{"_id": "d", "name": "Salat", "price": 15000, "quantity": 1, "isDeleted": true}
		]
	}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)

	require.Len(t, order.Items, 3)
	assert.Equal(t, "a", order.Items[0].ID)
	assert.Equal(t, "Osh", order.Items[0].Name)
	assert.Equal(t, int64(30000), order.Items[0].Price)
	assert.Equal(t, "Choy", order.Items[1].Name)
	assert.Equal(t, models.ItemStatusReady, order.Items[1].Status)
	assert.Equal(t, "Non", order.Items[2].Name)
	assert.Equal(t, models.ItemStatusPending, order.Items[2].Status)
}

func TestNormalizeOrder_DeletedCopyDoesNotHideLiveItem(t *testing.T) {
	raw := `{
		"_id": "o1",
		"items": [{"_id": "i1", "name": "Osh", "price": 1000, "isDeleted": true}],
		"orderItems": [{"_id": "i1", "name": "Osh", "price": 1000, "quantity": 1}, {"_id": "i2", "price": 500, "isDeleted": true}],
		"selectFoods": [{"_id": "i1", "name": "Osh", "price": 1000, "isDeleted": true}]
	}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "i1", order.Items[0].ID)
	assert.Equal(t, int64(1000), CalculateTotals(order, testNow).Subtotal)
}

func TestNormalizeOrder_Defaults(t *testing.T) {
	raw := `{"id": 42, "items": [{"id": 7, "price": "2500", "quantity": 0, "status": "weird"}]}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "42", order.ID)
	assert.Equal(t, models.OrderTypeDineIn, order.OrderType)
	assert.Equal(t, models.OrderStatusActive, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)

	it := order.Items[0]
	assert.Equal(t, "7", it.ID)
	assert.Equal(t, UnknownItemName, it.Name)
	assert.Equal(t, int64(2500), it.Price)
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, models.ItemStatusPending, it.Status)
	assert.False(t, it.IsPaid())
}

func TestNormalizeOrder_Takeaway(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"order type", `{"_id": "o1", "orderType": "saboy", "saboyNumber": 5}`},
		{"takeaway alias", `{"_id": "o1", "orderType": "takeaway", "saboyNumber": 5}`},
		{"isSaboy flag", `{"_id": "o1", "isSaboy": true, "saboyNumber": 5}`},
		{"isTakeaway flag", `{"_id": "o1", "isTakeaway": true, "saboyNumber": "5"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NormalizeOrder([]byte(tt.raw))
			require.NoError(t, err)
			assert.True(t, order.IsTakeaway())
			require.NotNil(t, order.SaboyNumber)
			assert.Equal(t, 5, *order.SaboyNumber)
			assert.Equal(t, "Saboy #5", order.DisplayName())
		})
	}
}

func TestNormalizeOrder_PaidSignalsAreEquivalent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"payment status", `{"_id": "o1", "paymentStatus": "paid"}`},
		{"status", `{"_id": "o1", "status": "paid"}`},
		{"flag", `{"_id": "o1", "isPaid": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NormalizeOrder([]byte(tt.raw))
			require.NoError(t, err)
			assert.True(t, order.IsPaid())
			assert.Equal(t, models.OrderStatusPaid, order.Status)
			assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
		})
	}
}

func TestNormalizeOrder_MissingID(t *testing.T) {
	_, err := NormalizeOrder([]byte(`{"orderNumber": 1}`))
	var malformed *MalformedOrderError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, KindMalformed, KindOf(err))

	_, err = NormalizeOrder([]byte(`{"_id": "o1", "items": [{"name": "Osh"}]}`))
	require.ErrorAs(t, err, &malformed)

	_, err = NormalizeOrder([]byte(`[1,2]`))
	require.ErrorAs(t, err, &malformed)
}

func TestNormalizeOrder_CancelledItemIsNeverPaid(t *testing.T) {
	raw := `{"_id": "o1", "items": [
		{"_id": "a", "name": "Osh", "price": 30000, "quantity": 1, "status": "cancelled", "isPaid": true, "cancelReason": "tugadi"}
	]}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.False(t, order.Items[0].IsPaid())
	assert.Equal(t, models.SettlementUnpaid, order.Items[0].Settlement().Kind())
	assert.Equal(t, "tugadi", order.Items[0].CancelReason)
	assert.True(t, order.IsEffectivelyCancelled())
}

func TestNormalizeOrder_PartialSettlement(t *testing.T) {
	raw := `{"_id": "o1", "items": [
		{"_id": "a", "name": "Osh", "price": 30000, "quantity": 1, "status": "served",
		 "isPaid": true, "paidAt": "2025-03-14T11:00:00Z", "paymentSessionId": "s1", "itemPaymentType": "card"},
		{"_id": "b", "name": "Choy", "price": 5000, "quantity": 1, "status": "served"}
	]}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)
	assert.False(t, order.IsPaid())

	st := order.Items[0].Settlement()
	assert.Equal(t, models.SettlementPartiallySettled, st.Kind())
	assert.Equal(t, "s1", st.SessionID())
	assert.Equal(t, models.PaymentTypeCard, st.Tender())
	require.NotNil(t, st.PaidAt())
	assert.False(t, order.Items[1].IsPaid())
}

func TestNormalizeOrder_PaidOrderSettlesItemsFully(t *testing.T) {
	raw := `{"_id": "o1", "paymentStatus": "paid", "paymentType": "click", "paidAt": "2025-03-14T11:30:00Z",
		"items": [{"_id": "a", "name": "Osh", "price": 30000, "quantity": 1, "status": "served"}]}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	st := order.Items[0].Settlement()
	assert.Equal(t, models.SettlementFullySettled, st.Kind())
	assert.Equal(t, models.PaymentTypeClick, st.Tender())
	require.NotNil(t, st.PaidAt())
	assert.Equal(t, *order.PaidAt, *st.PaidAt())
}

func TestNormalizeOrder_Totals(t *testing.T) {
	raw := `{"_id": "o1", "total": 40000, "serviceFee": "4000", "hourlyCharge": 5000.4,
		"serviceChargePercent": 12.5, "hasHourlyCharge": true, "hourlyChargeAmount": 5000}`

	order, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, int64(40000), order.Subtotal)
	assert.Equal(t, int64(4000), order.ServiceCharge)
	assert.Equal(t, int64(5000), order.HourlyCharge)
	assert.Equal(t, int64(49000), order.GrandTotal)
	require.NotNil(t, order.ServiceChargePercent)
	assert.Equal(t, 12.5, *order.ServiceChargePercent)
	assert.True(t, order.HasHourlyCharge)

	order, err = NormalizeOrder([]byte(`{"_id": "o1", "subtotal": 100, "serviceCharge": 10, "finalTotal": 115}`))
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.Subtotal)
	assert.Equal(t, int64(10), order.ServiceCharge)
	assert.Equal(t, int64(115), order.GrandTotal)
}

func TestNormalizeOrder_WaiterAndTable(t *testing.T) {
	order, err := NormalizeOrder([]byte(`{"_id": "o1", "waiter": {"_id": "w1", "name": "Aziz"}, "table": {"title": "Stol 9"}}`))
	require.NoError(t, err)
	assert.Equal(t, models.Waiter{ID: "w1", Name: "Aziz"}, order.Waiter)
	assert.Equal(t, "Stol 9", order.TableName)

	order, err = NormalizeOrder([]byte(`{"_id": "o1", "waiter": "w2", "waiterName": "Bobur", "tableNumber": 3}`))
	require.NoError(t, err)
	assert.Equal(t, models.Waiter{ID: "w2", Name: "Bobur"}, order.Waiter)
	assert.Equal(t, "Stol 3", order.DisplayName())
}

func TestNormalizeOrder_IsIdempotent(t *testing.T) {
	raw := `{"_id": "o1", "orderNumber": 3, "orderType": "dine-in", "tableName": "Stol 2",
		"createdAt": "2025-03-14T10:00:00Z", "total": 35000, "serviceFee": 3500, "grandTotal": 38500,
		"items": [
			{"_id": "a", "name": "Osh", "price": 30000, "quantity": 1, "status": "served", "isPaid": true, "paymentSessionId": "s1", "itemPaymentType": "cash", "paidAt": "2025-03-14T11:00:00Z"},
			{"_id": "b", "name": "Choy", "price": 5000, "quantity": 1, "status": "cancelled"}
		]}`

	first, err := NormalizeOrder([]byte(raw))
	require.NoError(t, err)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := NormalizeOrder(encoded)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeOrders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare array", `[{"_id": "a"}, {"_id": "b"}]`, []string{"a", "b"}},
		{"orders envelope", `{"orders": [{"_id": "a"}]}`, []string{"a"}},
		{"data envelope", `{"success": true, "data": [{"_id": "a"}]}`, []string{"a"}},
		{"skips malformed", `[{"_id": "a"}, {"name": "no id"}, "junk", {"_id": "c"}]`, []string{"a", "c"}},
		{"null list", `{"orders": null}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := NormalizeOrders([]byte(tt.raw))
			require.NoError(t, err)
			ids := []string{}
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := NormalizeOrders([]byte(`{"message": "nope"}`))
	assert.Equal(t, KindMalformed, KindOf(err))
}
