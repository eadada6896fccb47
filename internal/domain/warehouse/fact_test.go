package warehouse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
}

func tsPtr(day int, hour int) *time.Time {
	t := ts(day, hour)
	return &t
}

func testOrders() []RawOrder {
	return []RawOrder{
		{
			OrderID:               "o1",
			CustomerID:            "c1",
			Status:                "delivered",
			PurchaseTimestamp:     ts(1, 10),
			DeliveredCustomerDate: tsPtr(5, 10),
			EstimatedDeliveryDate: tsPtr(7, 0),
		},
		{
			OrderID:           "o2",
			CustomerID:        "c2",
			Status:            "shipped",
			PurchaseTimestamp: ts(2, 8),
			// not yet delivered
			EstimatedDeliveryDate: tsPtr(9, 0),
		},
	}
}

func testItems() []RawOrderItem {
	return []RawOrderItem{
		{OrderID: "o1", OrderItemID: 2, ProductID: "p2", SellerID: "s1", Price: decimal.NewFromFloat(50), FreightValue: decimal.NewFromFloat(5)},
		{OrderID: "o1", OrderItemID: 1, ProductID: "p1", SellerID: "s1", Price: decimal.NewFromFloat(100), FreightValue: decimal.NewFromFloat(10)},
		{OrderID: "o2", OrderItemID: 1, ProductID: "p1", SellerID: "s2", Price: decimal.NewFromFloat(30), FreightValue: decimal.NewFromFloat(7)},
	}
}

func TestTransformSalesFacts_FanOut(t *testing.T) {
	facts, report, err := TransformSalesFacts(testOrders(), testItems(), JoinModeLenient, 1)
	require.NoError(t, err)
	require.Len(t, facts, 3)

	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, 3, report.Items)
	assert.Equal(t, 3, report.FactRows)
	assert.Zero(t, report.OrphanItems)
	assert.Zero(t, report.OrphanOrders)

	// Items within an order come out ordered by item ID, sale IDs monotonic.
	assert.Equal(t, int64(1), facts[0].SaleID)
	assert.Equal(t, 1, facts[0].OrderItemID)
	assert.Equal(t, int64(2), facts[1].SaleID)
	assert.Equal(t, 2, facts[1].OrderItemID)
	assert.Equal(t, int64(3), facts[2].SaleID)
}

func TestTransformSalesFacts_TotalAmount(t *testing.T) {
	facts, _, err := TransformSalesFacts(testOrders(), testItems(), JoinModeLenient, 1)
	require.NoError(t, err)

	for _, f := range facts {
		assert.True(t, f.TotalAmount.Equal(f.Price.Add(f.FreightValue)), "sale %d", f.SaleID)
		assert.False(t, f.TotalAmount.IsNegative(), "sale %d", f.SaleID)
	}
}

func TestTransformSalesFacts_DayMetrics(t *testing.T) {
	facts, report, err := TransformSalesFacts(testOrders(), testItems(), JoinModeLenient, 1)
	require.NoError(t, err)

	// o1 delivered May 5 10:00, purchased May 1 10:00, estimated May 7.
	delivered := facts[0]
	require.NotNil(t, delivered.ShippingDays)
	assert.Equal(t, 4, *delivered.ShippingDays)
	require.NotNil(t, delivered.DeliveryDelayDays)
	assert.Equal(t, -2, *delivered.DeliveryDelayDays) // early delivery

	// o2 undelivered: row still emitted, both day-metrics nil.
	undelivered := facts[2]
	assert.Equal(t, "o2", undelivered.OrderID)
	assert.Nil(t, undelivered.ShippingDays)
	assert.Nil(t, undelivered.DeliveryDelayDays)
	assert.Equal(t, 1, report.Undelivered)
}

func TestTransformSalesFacts_Orphans(t *testing.T) {
	orders := testOrders()
	orders = append(orders, RawOrder{OrderID: "o3", CustomerID: "c3", PurchaseTimestamp: ts(3, 0)}) // no items
	items := testItems()
	items = append(items, RawOrderItem{OrderID: "missing", OrderItemID: 1, ProductID: "p9", SellerID: "s9"})

	t.Run("lenient drops and counts orphans", func(t *testing.T) {
		facts, report, err := TransformSalesFacts(orders, items, JoinModeLenient, 1)
		require.NoError(t, err)
		assert.Len(t, facts, 3)
		assert.Equal(t, 1, report.OrphanItems)
		assert.Equal(t, 1, report.OrphanOrders)
	})

	t.Run("strict fails validation", func(t *testing.T) {
		_, report, err := TransformSalesFacts(orders, items, JoinModeStrict, 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, ErrOrphanRows)
		assert.Equal(t, 1, report.OrphanItems)
	})
}

func TestTransformSalesFacts_EmptyBatches(t *testing.T) {
	var verr *ValidationError

	_, _, err := TransformSalesFacts(nil, testItems(), JoinModeLenient, 1)
	require.ErrorAs(t, err, &verr)

	_, _, err = TransformSalesFacts(testOrders(), nil, JoinModeLenient, 1)
	require.ErrorAs(t, err, &verr)
}

func TestTransformSalesFacts_SaleIDOffset(t *testing.T) {
	facts, _, err := TransformSalesFacts(testOrders(), testItems(), JoinModeLenient, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), facts[0].SaleID)
	assert.Equal(t, int64(102), facts[2].SaleID)
}
