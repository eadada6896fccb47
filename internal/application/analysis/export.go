package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

const exportDateLayout = "2006-01-02"

// Exporter writes analysis outputs as CSV files, one file per mart.
type Exporter struct {
	dir    string
	logger *zap.Logger
}

// NewExporter creates a new Exporter writing into dir
func NewExporter(dir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{dir: dir, logger: logger}
}

// Export writes every successful output of the run. Outputs whose
// analysis failed are skipped.
func (e *Exporter) Export(r *Results) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	exports := []struct {
		name string
		rows func() [][]string
		skip bool
	}{
		{KeyDailySales, func() [][]string { return dailySalesRows(r) }, r.failed("sales_marts")},
		{KeyCategoryPerformance, func() [][]string { return categoryRows(r) }, r.failed("sales_marts")},
		{KeySegmentSummary, func() [][]string { return segmentSummaryRows(r) }, r.failed("sales_marts")},
		{KeySellerPerformance, func() [][]string { return sellerRows(r) }, r.failed("sales_marts")},
		{KeyCustomerRFM, func() [][]string { return rfmRows(r) }, r.failed(KeyCustomerRFM)},
		{KeySegmentLabels, func() [][]string { return segmentLabelRows(r) }, r.failed(KeySegmentLabels)},
		{KeyBasketPairs, func() [][]string { return basketRows(r) }, r.failed(KeyBasketPairs)},
		{KeyRevenueForecast, func() [][]string { return forecastRows(r) }, r.failed(KeyRevenueForecast)},
	}

	for _, ex := range exports {
		if ex.skip {
			e.logger.Warn("skipping export of failed analysis", zap.String("mart", ex.name))
			continue
		}
		path := filepath.Join(e.dir, ex.name+".csv")
		if err := writeCSV(path, ex.rows()); err != nil {
			return fmt.Errorf("export %s: %w", ex.name, err)
		}
		e.logger.Info("exported analysis output", zap.String("file", path))
	}
	return nil
}

func (r *Results) failed(name string) bool {
	_, ok := r.Failures[name]
	return ok
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func dailySalesRows(r *Results) [][]string {
	rows := [][]string{{"date", "total_orders", "total_revenue", "average_order_value"}}
	for _, row := range r.DailySales {
		rows = append(rows, []string{
			row.Date.Format(exportDateLayout),
			strconv.FormatInt(row.TotalOrders, 10),
			row.TotalRevenue.StringFixed(2),
			row.AverageOrderValue.StringFixed(2),
		})
	}
	return rows
}

func categoryRows(r *Results) [][]string {
	rows := [][]string{{"category", "total_sales", "total_revenue", "average_price", "average_shipping_days"}}
	for _, row := range r.CategoryPerformance {
		rows = append(rows, []string{
			row.Category,
			strconv.FormatInt(row.TotalSales, 10),
			row.TotalRevenue.StringFixed(2),
			row.AveragePrice.StringFixed(2),
			row.AverageShippingDays.StringFixed(2),
		})
	}
	return rows
}

func segmentSummaryRows(r *Results) [][]string {
	rows := [][]string{{"region", "city_size", "total_customers", "total_orders", "total_revenue", "average_order_value"}}
	for _, row := range r.SegmentSummary {
		rows = append(rows, []string{
			row.Region,
			row.CitySize,
			strconv.FormatInt(row.TotalCustomers, 10),
			strconv.FormatInt(row.TotalOrders, 10),
			row.TotalRevenue.StringFixed(2),
			row.AverageOrderValue.StringFixed(2),
		})
	}
	return rows
}

func sellerRows(r *Results) [][]string {
	rows := [][]string{{"seller_id", "city", "state", "total_orders", "total_revenue", "average_delivery_delay"}}
	for _, row := range r.SellerPerformance {
		rows = append(rows, []string{
			row.SellerID,
			row.City,
			row.State,
			strconv.FormatInt(row.TotalOrders, 10),
			row.TotalRevenue.StringFixed(2),
			row.AverageDeliveryDelay.StringFixed(2),
		})
	}
	return rows
}

func rfmRows(r *Results) [][]string {
	rows := [][]string{{"customer_id", "recency_days", "frequency", "monetary", "r_score", "f_score", "m_score", "rfm_score"}}
	for _, rec := range r.RFM {
		rows = append(rows, []string{
			rec.CustomerID,
			strconv.Itoa(rec.RecencyDays),
			strconv.Itoa(rec.Frequency),
			rec.Monetary.StringFixed(2),
			strconv.Itoa(rec.RScore),
			strconv.Itoa(rec.FScore),
			strconv.Itoa(rec.MScore),
			rec.RFMScore,
		})
	}
	return rows
}

func segmentLabelRows(r *Results) [][]string {
	rows := [][]string{{"customer_id", "segment"}}
	for _, rec := range r.Segments {
		rows = append(rows, []string{rec.CustomerID, rec.Segment.String()})
	}
	return rows
}

func basketRows(r *Results) [][]string {
	rows := [][]string{{"category1", "category2", "pair_count", "support", "confidence_1_2", "confidence_2_1"}}
	for _, p := range r.BasketPairs {
		rows = append(rows, []string{
			p.Category1,
			p.Category2,
			strconv.Itoa(p.PairCount),
			strconv.FormatFloat(p.Support, 'f', 6, 64),
			strconv.FormatFloat(p.Confidence12, 'f', 6, 64),
			strconv.FormatFloat(p.Confidence21, 'f', 6, 64),
		})
	}
	return rows
}

func forecastRows(r *Results) [][]string {
	rows := [][]string{{"date", "forecasted_revenue", "confidence_lower", "confidence_upper"}}
	for _, p := range r.Forecast {
		rows = append(rows, []string{
			p.Date.Format(exportDateLayout),
			p.ForecastedRevenue.StringFixed(2),
			p.ConfidenceLower.StringFixed(2),
			p.ConfidenceUpper.StringFixed(2),
		})
	}
	return rows
}
