package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mart tables are replaced wholesale on every analysis run; they carry
// no identity beyond their natural keys.

// DailySalesModel is one row of the daily sales summary mart.
type DailySalesModel struct {
	Date              time.Time       `gorm:"primaryKey;type:date"`
	TotalOrders       int64           `gorm:"not null"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for DailySalesModel
func (DailySalesModel) TableName() string { return "mart_daily_sales" }

// CategoryPerformanceModel is one row of the category performance mart.
type CategoryPerformanceModel struct {
	Category            string          `gorm:"primaryKey;size:128"`
	TotalSales          int64           `gorm:"not null"`
	TotalRevenue        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AveragePrice        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AverageShippingDays decimal.Decimal `gorm:"type:decimal(8,2);not null"`
}

// TableName returns the table name for CategoryPerformanceModel
func (CategoryPerformanceModel) TableName() string { return "mart_category_performance" }

// CustomerSegmentSummaryModel is one row of the region/city-size mart.
type CustomerSegmentSummaryModel struct {
	Region            string          `gorm:"primaryKey;size:32"`
	CitySize          string          `gorm:"primaryKey;size:16"`
	TotalCustomers    int64           `gorm:"not null"`
	TotalOrders       int64           `gorm:"not null"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for CustomerSegmentSummaryModel
func (CustomerSegmentSummaryModel) TableName() string { return "mart_customer_segments" }

// SellerPerformanceModel is one row of the seller performance mart.
type SellerPerformanceModel struct {
	SellerID             string          `gorm:"primaryKey;size:64"`
	City                 string          `gorm:"size:128"`
	State                string          `gorm:"size:8"`
	TotalOrders          int64           `gorm:"not null"`
	TotalRevenue         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AverageDeliveryDelay decimal.Decimal `gorm:"type:decimal(8,2);not null"`
}

// TableName returns the table name for SellerPerformanceModel
func (SellerPerformanceModel) TableName() string { return "mart_seller_performance" }

// CustomerRFMModel is one row of the RFM scoring mart.
type CustomerRFMModel struct {
	CustomerID  string          `gorm:"primaryKey;size:64"`
	RecencyDays int             `gorm:"not null"`
	Frequency   int             `gorm:"not null"`
	Monetary    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	RScore      int             `gorm:"not null"`
	FScore      int             `gorm:"not null"`
	MScore      int             `gorm:"not null"`
	RFMScore    string          `gorm:"size:3;not null;index"`
}

// TableName returns the table name for CustomerRFMModel
func (CustomerRFMModel) TableName() string { return "mart_customer_rfm" }

// CustomerSegmentLabelModel is one row of the per-customer segment mart.
type CustomerSegmentLabelModel struct {
	CustomerID string `gorm:"primaryKey;size:64"`
	Segment    string `gorm:"size:16;not null;index"`
}

// TableName returns the table name for CustomerSegmentLabelModel
func (CustomerSegmentLabelModel) TableName() string { return "mart_customer_segment_labels" }

// BasketPairModel is one row of the category association mart.
type BasketPairModel struct {
	Category1    string  `gorm:"primaryKey;size:128"`
	Category2    string  `gorm:"primaryKey;size:128"`
	PairCount    int     `gorm:"not null"`
	Support      float64 `gorm:"not null"`
	Confidence12 float64 `gorm:"not null"`
	Confidence21 float64 `gorm:"not null"`
}

// TableName returns the table name for BasketPairModel
func (BasketPairModel) TableName() string { return "mart_basket_pairs" }

// RevenueForecastModel is one row of the revenue forecast mart.
type RevenueForecastModel struct {
	Date              time.Time       `gorm:"primaryKey;type:date"`
	ForecastedRevenue decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ConfidenceLower   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ConfidenceUpper   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for RevenueForecastModel
func (RevenueForecastModel) TableName() string { return "mart_revenue_forecast" }
