package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/olist/olap-engine/internal/domain/analytics"
	"github.com/olist/olap-engine/internal/infrastructure/persistence/models"
)

// GormMartRepository persists analysis outputs. Every writer replaces
// its mart wholesale inside one transaction, so readers never observe a
// half-written run.
type GormMartRepository struct {
	db *gorm.DB
}

// NewGormMartRepository creates a new GormMartRepository
func NewGormMartRepository(db *gorm.DB) *GormMartRepository {
	return &GormMartRepository{db: db}
}

func replaceAll[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var zero T
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&zero).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceDailySales replaces the daily sales mart.
func (r *GormMartRepository) ReplaceDailySales(ctx context.Context, rows []analytics.DailySalesRow) error {
	out := make([]models.DailySalesModel, len(rows))
	for i, row := range rows {
		out[i] = models.DailySalesModel{
			Date:              row.Date,
			TotalOrders:       row.TotalOrders,
			TotalRevenue:      row.TotalRevenue,
			AverageOrderValue: row.AverageOrderValue,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceCategoryPerformance replaces the category performance mart.
func (r *GormMartRepository) ReplaceCategoryPerformance(ctx context.Context, rows []analytics.CategoryPerformanceRow) error {
	out := make([]models.CategoryPerformanceModel, len(rows))
	for i, row := range rows {
		out[i] = models.CategoryPerformanceModel{
			Category:            row.Category,
			TotalSales:          row.TotalSales,
			TotalRevenue:        row.TotalRevenue,
			AveragePrice:        row.AveragePrice,
			AverageShippingDays: row.AverageShippingDays,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceCustomerSegmentSummary replaces the region/city-size mart.
func (r *GormMartRepository) ReplaceCustomerSegmentSummary(ctx context.Context, rows []analytics.CustomerSegmentRow) error {
	out := make([]models.CustomerSegmentSummaryModel, len(rows))
	for i, row := range rows {
		out[i] = models.CustomerSegmentSummaryModel{
			Region:            row.Region,
			CitySize:          row.CitySize,
			TotalCustomers:    row.TotalCustomers,
			TotalOrders:       row.TotalOrders,
			TotalRevenue:      row.TotalRevenue,
			AverageOrderValue: row.AverageOrderValue,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceSellerPerformance replaces the seller performance mart.
func (r *GormMartRepository) ReplaceSellerPerformance(ctx context.Context, rows []analytics.SellerPerformanceRow) error {
	out := make([]models.SellerPerformanceModel, len(rows))
	for i, row := range rows {
		out[i] = models.SellerPerformanceModel{
			SellerID:             row.SellerID,
			City:                 row.City,
			State:                row.State,
			TotalOrders:          row.TotalOrders,
			TotalRevenue:         row.TotalRevenue,
			AverageDeliveryDelay: row.AverageDeliveryDelay,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceCustomerRFM replaces the RFM scoring mart.
func (r *GormMartRepository) ReplaceCustomerRFM(ctx context.Context, records []analytics.RFMRecord) error {
	out := make([]models.CustomerRFMModel, len(records))
	for i, rec := range records {
		out[i] = models.CustomerRFMModel{
			CustomerID:  rec.CustomerID,
			RecencyDays: rec.RecencyDays,
			Frequency:   rec.Frequency,
			Monetary:    rec.Monetary,
			RScore:      rec.RScore,
			FScore:      rec.FScore,
			MScore:      rec.MScore,
			RFMScore:    rec.RFMScore,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceCustomerSegments replaces the per-customer segment mart.
func (r *GormMartRepository) ReplaceCustomerSegments(ctx context.Context, records []analytics.SegmentRecord) error {
	out := make([]models.CustomerSegmentLabelModel, len(records))
	for i, rec := range records {
		out[i] = models.CustomerSegmentLabelModel{
			CustomerID: rec.CustomerID,
			Segment:    rec.Segment.String(),
		}
	}
	return replaceAll(ctx, r.db, out)
}

// ReplaceBasketPairs replaces the category association mart.
func (r *GormMartRepository) ReplaceBasketPairs(ctx context.Context, pairs []analytics.BasketPair) error {
	out := make([]models.BasketPairModel, len(pairs))
	for i, p := range pairs {
		out[i] = models.BasketPairModel{
			Category1:    p.Category1,
			Category2:    p.Category2,
			PairCount:    p.PairCount,
			Support:      p.Support,
			Confidence12: p.Confidence12,
			Confidence21: p.Confidence21,
		}
	}
	return replaceAll(ctx, r.db, out)
}

// FindTopRFM loads RFM rows ordered by a whitelisted column. Unknown
// columns fall back to monetary, invalid directions to descending.
func (r *GormMartRepository) FindTopRFM(ctx context.Context, sortField, sortOrder string, limit int) ([]analytics.RFMRecord, error) {
	field := ValidateSortField(sortField, RFMSortFields, "monetary")
	order := ValidateSortOrder(sortOrder)

	query := r.db.WithContext(ctx).Order(field + " " + order)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.CustomerRFMModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.RFMRecord, len(rows))
	for i, m := range rows {
		out[i] = analytics.RFMRecord{
			CustomerID:  m.CustomerID,
			RecencyDays: m.RecencyDays,
			Frequency:   m.Frequency,
			Monetary:    m.Monetary,
			RScore:      m.RScore,
			FScore:      m.FScore,
			MScore:      m.MScore,
			RFMScore:    m.RFMScore,
		}
	}
	return out, nil
}

// FindTopDailySales loads daily sales rows ordered by a whitelisted
// column. Unknown columns fall back to total_revenue descending.
func (r *GormMartRepository) FindTopDailySales(ctx context.Context, sortField, sortOrder string, limit int) ([]analytics.DailySalesRow, error) {
	field := ValidateSortField(sortField, DailySalesSortFields, "total_revenue")
	order := ValidateSortOrder(sortOrder)

	query := r.db.WithContext(ctx).Order(field + " " + order)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.DailySalesModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.DailySalesRow, len(rows))
	for i, m := range rows {
		out[i] = analytics.DailySalesRow{
			Date:              m.Date,
			TotalOrders:       m.TotalOrders,
			TotalRevenue:      m.TotalRevenue,
			AverageOrderValue: m.AverageOrderValue,
		}
	}
	return out, nil
}

// ReplaceRevenueForecast replaces the revenue forecast mart.
func (r *GormMartRepository) ReplaceRevenueForecast(ctx context.Context, points []analytics.ForecastPoint) error {
	out := make([]models.RevenueForecastModel, len(points))
	for i, p := range points {
		out[i] = models.RevenueForecastModel{
			Date:              p.Date,
			ForecastedRevenue: p.ForecastedRevenue,
			ConfidenceLower:   p.ConfidenceLower,
			ConfidenceUpper:   p.ConfidenceUpper,
		}
	}
	return replaceAll(ctx, r.db, out)
}
