package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cashier-desk/models"
)

func TestPartitionOrder_Full(t *testing.T) {
	o := dineIn("o1", item("a", 30000, 1), item("b", 5000, 2), cancelledItem("c", 9000, 1))
	o.HasHourlyCharge = true
	o.HourlyChargeAmount = 5000

	part, err := PartitionOrder(o, PaymentModeFull, nil, testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, part.ItemIDs())
	assert.Equal(t, int64(40000), part.Subtotal)
	assert.Equal(t, int64(4000), part.ServiceCharge)
	assert.Equal(t, int64(5000), part.HourlyCharge)
	assert.Equal(t, int64(49000), part.AmountDue)
}

func TestPartitionOrder_FullRejectsPaidOrder(t *testing.T) {
	_, err := PartitionOrder(paidOrder(dineIn("o1", item("a", 1000, 1))), PaymentModeFull, nil, testNow)
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}

func TestPartitionOrder_Partial(t *testing.T) {
	o := dineIn("o1",
		item("a", 30000, 1),
		item("b", 5000, 2),
		paidItem("c", 8000, 1, "s1"),
		cancelledItem("d", 9000, 1),
	)
	o.HasHourlyCharge = true
	o.HourlyChargeAmount = 5000

	part, err := PartitionOrder(o, PaymentModePartial, []string{"b", "c", "d", "missing"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, part.ItemIDs())
	assert.Equal(t, int64(10000), part.Subtotal)
	assert.Equal(t, int64(1000), part.ServiceCharge)
	assert.Zero(t, part.HourlyCharge)
	assert.Equal(t, int64(11000), part.AmountDue)
}

func TestPartitionOrder_PartialEmptySelection(t *testing.T) {
	o := dineIn("o1", paidItem("a", 30000, 1, "s1"), cancelledItem("b", 5000, 1))

	_, err := PartitionOrder(o, PaymentModePartial, []string{"a", "b"}, testNow)
	var empty *EmptySelectionError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = PartitionOrder(o, PaymentModePartial, nil, testNow)
	require.ErrorAs(t, err, &empty)
}

func TestPartitionOrder_InvalidMode(t *testing.T) {
	_, err := PartitionOrder(dineIn("o1", item("a", 1, 1)), "half", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestApplySettlement_PartialThenFull(t *testing.T) {
	o := dineIn("o1", item("a", 30000, 1), item("b", 5000, 1), cancelledItem("c", 9000, 1))
	paidAt := testNow.Add(time.Minute)

	first := ApplySettlement(o, []string{"a", "c"}, "s1", models.PaymentTypeCard, paidAt)
	assert.False(t, first.IsPaid())
	assert.False(t, AllItemsPaid(first))
	assert.Equal(t, models.SettlementPartiallySettled, first.Items[0].Settlement().Kind())
	assert.Equal(t, "s1", first.Items[0].Settlement().SessionID())
	assert.False(t, first.Items[1].IsPaid())
	assert.False(t, first.Items[2].IsPaid())

	// the input order is untouched
	assert.False(t, o.Items[0].IsPaid())

	second := ApplySettlement(first, []string{"a", "b"}, "s2", models.PaymentTypeCash, paidAt)
	assert.True(t, second.IsPaid())
	assert.True(t, AllItemsPaid(second))
	assert.Equal(t, models.OrderStatusPaid, second.Status)
	assert.Equal(t, models.PaymentTypeCash, second.PaymentType)
	require.NotNil(t, second.PaidAt)

	// a settled item keeps its first session
	assert.Equal(t, "s1", second.Items[0].Settlement().SessionID())
	assert.Equal(t, "s2", second.Items[1].Settlement().SessionID())
	assert.Equal(t, models.SettlementFullySettled, second.Items[0].Settlement().Kind())
	assert.Equal(t, models.SettlementFullySettled, second.Items[1].Settlement().Kind())
	assert.Equal(t, models.SettlementUnpaid, second.Items[2].Settlement().Kind())
}

func TestAllItemsPaid(t *testing.T) {
	assert.False(t, AllItemsPaid(dineIn("o1")))
	assert.False(t, AllItemsPaid(dineIn("o1", cancelledItem("a", 1000, 1))))
	assert.False(t, AllItemsPaid(dineIn("o1", paidItem("a", 1000, 1, "s1"), item("b", 1000, 1))))
	assert.True(t, AllItemsPaid(dineIn("o1", paidItem("a", 1000, 1, "s1"), cancelledItem("b", 1000, 1))))
}
