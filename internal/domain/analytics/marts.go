package analytics

import (
	"time"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

// DailySalesRow summarizes one calendar day of sales.
type DailySalesRow struct {
	Date              time.Time       `json:"date"`
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// CategoryPerformanceRow summarizes sales of one product category.
type CategoryPerformanceRow struct {
	Category            string          `json:"category"`
	TotalSales          int64           `json:"total_sales"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AveragePrice        decimal.Decimal `json:"average_price"`
	AverageShippingDays decimal.Decimal `json:"average_shipping_days"`
}

// CustomerSegmentRow summarizes sales of one region/city-size segment.
type CustomerSegmentRow struct {
	Region            string          `json:"region"`
	CitySize          string          `json:"city_size"`
	TotalCustomers    int64           `json:"total_customers"`
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// SellerPerformanceRow summarizes one seller's sales and delivery record.
type SellerPerformanceRow struct {
	SellerID             string          `json:"seller_id"`
	City                 string          `json:"city"`
	State                string          `json:"state"`
	TotalOrders          int64           `json:"total_orders"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	AverageDeliveryDelay decimal.Decimal `json:"average_delivery_delay"`
}

func totalAmount(f warehouse.SalesFact) (decimal.Decimal, bool) {
	return f.TotalAmount, true
}

func price(f warehouse.SalesFact) (decimal.Decimal, bool) {
	return f.Price, true
}

func shippingDays(f warehouse.SalesFact) (decimal.Decimal, bool) {
	if f.ShippingDays == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(*f.ShippingDays)), true
}

func deliveryDelayDays(f warehouse.SalesFact) (decimal.Decimal, bool) {
	if f.DeliveryDelayDays == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(*f.DeliveryDelayDays)), true
}

// DailySales aggregates fact rows into the daily_sales summary, ordered
// by date ascending.
func DailySales(facts []warehouse.SalesFact) []DailySalesRow {
	rows := Aggregate(facts,
		GroupSpec{
			KeyNames: []string{"date"},
			Keys:     func(f warehouse.SalesFact) []string { return []string{f.OrderDate.Format(dayLayout)} },
		},
		[]MeasureSpec{
			{Name: "total_orders", Agg: AggCount},
			{Name: "total_revenue", Agg: AggSum, Value: totalAmount},
			{Name: "average_order_value", Agg: AggAvg, Value: totalAmount},
		},
		"",
	)

	out := make([]DailySalesRow, len(rows))
	for i, r := range rows {
		date, _ := time.Parse(dayLayout, r.Keys[0])
		out[i] = DailySalesRow{
			Date:              date,
			TotalOrders:       r.Measure("total_orders").IntPart(),
			TotalRevenue:      r.Measure("total_revenue"),
			AverageOrderValue: r.Measure("average_order_value"),
		}
	}
	return out
}

// CategoryPerformance aggregates fact rows by product category, ordered
// by revenue descending. Facts whose product is missing from the
// dimension batch are grouped under the empty category.
func CategoryPerformance(facts []warehouse.SalesFact, products []warehouse.ProductDim) []CategoryPerformanceRow {
	categoryByProduct := make(map[string]string, len(products))
	for _, p := range products {
		categoryByProduct[p.ProductID] = p.CategoryName
	}

	rows := Aggregate(facts,
		GroupSpec{
			KeyNames: []string{"category"},
			Keys: func(f warehouse.SalesFact) []string {
				return []string{categoryByProduct[f.ProductID]}
			},
		},
		[]MeasureSpec{
			{Name: "total_sales", Agg: AggCount},
			{Name: "total_revenue", Agg: AggSum, Value: totalAmount},
			{Name: "average_price", Agg: AggAvg, Value: price},
			{Name: "average_shipping_days", Agg: AggAvg, Value: shippingDays},
		},
		"total_revenue",
	)

	out := make([]CategoryPerformanceRow, len(rows))
	for i, r := range rows {
		out[i] = CategoryPerformanceRow{
			Category:            r.Keys[0],
			TotalSales:          r.Measure("total_sales").IntPart(),
			TotalRevenue:        r.Measure("total_revenue"),
			AveragePrice:        r.Measure("average_price"),
			AverageShippingDays: r.Measure("average_shipping_days"),
		}
	}
	return out
}

// CustomerSegmentSummary aggregates fact rows by customer region and
// city size, ordered by revenue descending.
func CustomerSegmentSummary(facts []warehouse.SalesFact, customers []warehouse.CustomerDim) []CustomerSegmentRow {
	type geo struct{ region, citySize string }
	geoByCustomer := make(map[string]geo, len(customers))
	for _, c := range customers {
		geoByCustomer[c.CustomerID] = geo{region: c.Region, citySize: c.CitySize}
	}

	rows := Aggregate(facts,
		GroupSpec{
			KeyNames: []string{"region", "city_size"},
			Keys: func(f warehouse.SalesFact) []string {
				g := geoByCustomer[f.CustomerID]
				return []string{g.region, g.citySize}
			},
		},
		[]MeasureSpec{
			{Name: "total_customers", Agg: AggCountDistinct, DistinctKey: func(f warehouse.SalesFact) string { return f.CustomerID }},
			{Name: "total_orders", Agg: AggCount},
			{Name: "total_revenue", Agg: AggSum, Value: totalAmount},
			{Name: "average_order_value", Agg: AggAvg, Value: totalAmount},
		},
		"total_revenue",
	)

	out := make([]CustomerSegmentRow, len(rows))
	for i, r := range rows {
		out[i] = CustomerSegmentRow{
			Region:            r.Keys[0],
			CitySize:          r.Keys[1],
			TotalCustomers:    r.Measure("total_customers").IntPart(),
			TotalOrders:       r.Measure("total_orders").IntPart(),
			TotalRevenue:      r.Measure("total_revenue"),
			AverageOrderValue: r.Measure("average_order_value"),
		}
	}
	return out
}

// SellerPerformance aggregates fact rows by seller, ordered by revenue
// descending. The delivery-delay average covers delivered rows only.
func SellerPerformance(facts []warehouse.SalesFact, sellers []warehouse.SellerDim) []SellerPerformanceRow {
	sellerByID := make(map[string]warehouse.SellerDim, len(sellers))
	for _, s := range sellers {
		sellerByID[s.SellerID] = s
	}

	rows := Aggregate(facts,
		GroupSpec{
			KeyNames: []string{"seller_id", "city", "state"},
			Keys: func(f warehouse.SalesFact) []string {
				s := sellerByID[f.SellerID]
				return []string{f.SellerID, s.City, s.State}
			},
		},
		[]MeasureSpec{
			{Name: "total_orders", Agg: AggCount},
			{Name: "total_revenue", Agg: AggSum, Value: totalAmount},
			{Name: "average_delivery_delay", Agg: AggAvg, Value: deliveryDelayDays},
		},
		"total_revenue",
	)

	out := make([]SellerPerformanceRow, len(rows))
	for i, r := range rows {
		out[i] = SellerPerformanceRow{
			SellerID:             r.Keys[0],
			City:                 r.Keys[1],
			State:                r.Keys[2],
			TotalOrders:          r.Measure("total_orders").IntPart(),
			TotalRevenue:         r.Measure("total_revenue"),
			AverageDeliveryDelay: r.Measure("average_delivery_delay"),
		}
	}
	return out
}
