package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

func TestDailySales(t *testing.T) {
	facts := []warehouse.SalesFact{
		testFact("o3", "c1", "p1", "s1", 2, 40),
		testFact("o1", "c1", "p1", "s1", 1, 100),
		testFact("o2", "c2", "p2", "s1", 1, 200),
	}

	rows := DailySales(facts)
	require.Len(t, rows, 2)

	// Date ascending regardless of input order.
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, int64(2), rows[0].TotalOrders)
	assert.True(t, rows[0].TotalRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, rows[0].AverageOrderValue.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), rows[1].Date)
	assert.True(t, rows[1].TotalRevenue.Equal(decimal.NewFromInt(40)))
}

func TestCategoryPerformance(t *testing.T) {
	products := []warehouse.ProductDim{
		{ProductID: "p1", CategoryName: "books"},
		{ProductID: "p2", CategoryName: "toys"},
	}
	f1 := testFact("o1", "c1", "p1", "s1", 1, 100)
	f1.ShippingDays = intPtr(4)
	f2 := testFact("o2", "c2", "p1", "s1", 2, 50)
	// f2 undelivered: excluded from the shipping average.
	f3 := testFact("o3", "c3", "p2", "s1", 3, 500)
	f3.ShippingDays = intPtr(2)

	rows := CategoryPerformance([]warehouse.SalesFact{f1, f2, f3}, products)
	require.Len(t, rows, 2)

	assert.Equal(t, "toys", rows[0].Category)
	assert.True(t, rows[0].TotalRevenue.Equal(decimal.NewFromInt(500)))

	books := rows[1]
	assert.Equal(t, "books", books.Category)
	assert.Equal(t, int64(2), books.TotalSales)
	assert.True(t, books.TotalRevenue.Equal(decimal.NewFromInt(150)))
	assert.True(t, books.AveragePrice.Equal(decimal.NewFromInt(75)))
	assert.True(t, books.AverageShippingDays.Equal(decimal.NewFromInt(4)))
}

func TestCustomerSegmentSummary(t *testing.T) {
	customers := []warehouse.CustomerDim{
		{CustomerID: "c1", Region: "Southeast", CitySize: "Large"},
		{CustomerID: "c2", Region: "Southeast", CitySize: "Large"},
		{CustomerID: "c3", Region: "South", CitySize: "Medium"},
	}
	facts := []warehouse.SalesFact{
		testFact("o1", "c1", "p1", "s1", 1, 100),
		testFact("o2", "c1", "p1", "s1", 2, 100),
		testFact("o3", "c2", "p1", "s1", 3, 100),
		testFact("o4", "c3", "p1", "s1", 4, 50),
	}

	rows := CustomerSegmentSummary(facts, customers)
	require.Len(t, rows, 2)

	se := rows[0]
	assert.Equal(t, "Southeast", se.Region)
	assert.Equal(t, "Large", se.CitySize)
	assert.Equal(t, int64(2), se.TotalCustomers)
	assert.Equal(t, int64(3), se.TotalOrders)
	assert.True(t, se.TotalRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, se.AverageOrderValue.Equal(decimal.NewFromInt(100)))
}

func TestSellerPerformance(t *testing.T) {
	sellers := []warehouse.SellerDim{
		{SellerID: "s1", City: "Sao Paulo", State: "SP"},
		{SellerID: "s2", City: "Curitiba", State: "PR"},
	}
	f1 := testFact("o1", "c1", "p1", "s1", 1, 300)
	f1.DeliveryDelayDays = intPtr(-2)
	f2 := testFact("o2", "c2", "p1", "s1", 2, 100)
	f2.DeliveryDelayDays = intPtr(4)
	f3 := testFact("o3", "c3", "p1", "s2", 3, 50)
	// s2's only row is undelivered.

	rows := SellerPerformance([]warehouse.SalesFact{f1, f2, f3}, sellers)
	require.Len(t, rows, 2)

	s1 := rows[0]
	assert.Equal(t, "s1", s1.SellerID)
	assert.Equal(t, "Sao Paulo", s1.City)
	assert.Equal(t, "SP", s1.State)
	assert.Equal(t, int64(2), s1.TotalOrders)
	assert.True(t, s1.TotalRevenue.Equal(decimal.NewFromInt(400)))
	assert.True(t, s1.AverageDeliveryDelay.Equal(decimal.NewFromInt(1)))

	assert.Equal(t, "s2", rows[1].SellerID)
	assert.True(t, rows[1].AverageDeliveryDelay.IsZero())
}
