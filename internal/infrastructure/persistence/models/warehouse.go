package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

// DateDimModel is the persistence model for the date dimension.
type DateDimModel struct {
	Date      time.Time `gorm:"primaryKey;type:date"`
	Day       int       `gorm:"not null"`
	Month     int       `gorm:"not null"`
	Year      int       `gorm:"not null;index"`
	Quarter   int       `gorm:"not null"`
	DayOfWeek int       `gorm:"not null"`
	IsWeekend bool      `gorm:"not null"`
}

// TableName returns the table name for DateDimModel
func (DateDimModel) TableName() string { return "dim_dates" }

// ToDomain converts DateDimModel to a domain DateDim
func (m *DateDimModel) ToDomain() warehouse.DateDim {
	return warehouse.DateDim{
		Date:      m.Date,
		Day:       m.Day,
		Month:     m.Month,
		Year:      m.Year,
		Quarter:   m.Quarter,
		DayOfWeek: m.DayOfWeek,
		IsWeekend: m.IsWeekend,
	}
}

// DateDimModelFromDomain builds a persistence model from a domain DateDim
func DateDimModelFromDomain(d warehouse.DateDim) DateDimModel {
	return DateDimModel{
		Date:      d.Date,
		Day:       d.Day,
		Month:     d.Month,
		Year:      d.Year,
		Quarter:   d.Quarter,
		DayOfWeek: d.DayOfWeek,
		IsWeekend: d.IsWeekend,
	}
}

// CustomerDimModel is the persistence model for the customer dimension.
type CustomerDimModel struct {
	CustomerID       string `gorm:"primaryKey;size:64"`
	CustomerUniqueID string `gorm:"size:64;index"`
	ZipCode          string `gorm:"size:16"`
	City             string `gorm:"size:128"`
	State            string `gorm:"size:8;index"`
	Region           string `gorm:"size:32;index"`
	CitySize         string `gorm:"size:16"`
}

// TableName returns the table name for CustomerDimModel
func (CustomerDimModel) TableName() string { return "dim_customers" }

// ToDomain converts CustomerDimModel to a domain CustomerDim
func (m *CustomerDimModel) ToDomain() warehouse.CustomerDim {
	return warehouse.CustomerDim{
		CustomerID:       m.CustomerID,
		CustomerUniqueID: m.CustomerUniqueID,
		ZipCode:          m.ZipCode,
		City:             m.City,
		State:            m.State,
		Region:           m.Region,
		CitySize:         m.CitySize,
	}
}

// CustomerDimModelFromDomain builds a persistence model from a domain CustomerDim
func CustomerDimModelFromDomain(d warehouse.CustomerDim) CustomerDimModel {
	return CustomerDimModel{
		CustomerID:       d.CustomerID,
		CustomerUniqueID: d.CustomerUniqueID,
		ZipCode:          d.ZipCode,
		City:             d.City,
		State:            d.State,
		Region:           d.Region,
		CitySize:         d.CitySize,
	}
}

// SellerDimModel is the persistence model for the seller dimension.
type SellerDimModel struct {
	SellerID string `gorm:"primaryKey;size:64"`
	ZipCode  string `gorm:"size:16"`
	City     string `gorm:"size:128"`
	State    string `gorm:"size:8;index"`
	Region   string `gorm:"size:32;index"`
	CitySize string `gorm:"size:16"`
}

// TableName returns the table name for SellerDimModel
func (SellerDimModel) TableName() string { return "dim_sellers" }

// ToDomain converts SellerDimModel to a domain SellerDim
func (m *SellerDimModel) ToDomain() warehouse.SellerDim {
	return warehouse.SellerDim{
		SellerID: m.SellerID,
		ZipCode:  m.ZipCode,
		City:     m.City,
		State:    m.State,
		Region:   m.Region,
		CitySize: m.CitySize,
	}
}

// SellerDimModelFromDomain builds a persistence model from a domain SellerDim
func SellerDimModelFromDomain(d warehouse.SellerDim) SellerDimModel {
	return SellerDimModel{
		SellerID: d.SellerID,
		ZipCode:  d.ZipCode,
		City:     d.City,
		State:    d.State,
		Region:   d.Region,
		CitySize: d.CitySize,
	}
}

// ProductDimModel is the persistence model for the product dimension.
type ProductDimModel struct {
	ProductID      string  `gorm:"primaryKey;size:64"`
	CategoryName   string  `gorm:"size:128;index"`
	WeightG        float64 `gorm:"not null"`
	LengthCm       float64 `gorm:"not null"`
	HeightCm       float64 `gorm:"not null"`
	WidthCm        float64 `gorm:"not null"`
	VolumeCm3      float64 `gorm:"not null"`
	SizeCategory   string  `gorm:"size:16"`
	WeightCategory string  `gorm:"size:16"`
}

// TableName returns the table name for ProductDimModel
func (ProductDimModel) TableName() string { return "dim_products" }

// ToDomain converts ProductDimModel to a domain ProductDim
func (m *ProductDimModel) ToDomain() warehouse.ProductDim {
	return warehouse.ProductDim{
		ProductID:      m.ProductID,
		CategoryName:   m.CategoryName,
		WeightG:        m.WeightG,
		LengthCm:       m.LengthCm,
		HeightCm:       m.HeightCm,
		WidthCm:        m.WidthCm,
		VolumeCm3:      m.VolumeCm3,
		SizeCategory:   m.SizeCategory,
		WeightCategory: m.WeightCategory,
	}
}

// ProductDimModelFromDomain builds a persistence model from a domain ProductDim
func ProductDimModelFromDomain(d warehouse.ProductDim) ProductDimModel {
	return ProductDimModel{
		ProductID:      d.ProductID,
		CategoryName:   d.CategoryName,
		WeightG:        d.WeightG,
		LengthCm:       d.LengthCm,
		HeightCm:       d.HeightCm,
		WidthCm:        d.WidthCm,
		VolumeCm3:      d.VolumeCm3,
		SizeCategory:   d.SizeCategory,
		WeightCategory: d.WeightCategory,
	}
}

// SalesFactModel is the persistence model for the sales fact table.
// Rows are append-only.
type SalesFactModel struct {
	SaleID            int64           `gorm:"primaryKey;autoIncrement:false"`
	OrderID           string          `gorm:"size:64;index;not null"`
	OrderItemID       int             `gorm:"not null"`
	CustomerID        string          `gorm:"size:64;index;not null"`
	SellerID          string          `gorm:"size:64;index;not null"`
	ProductID         string          `gorm:"size:64;index;not null"`
	OrderDate         time.Time       `gorm:"index;not null"`
	DeliveryDate      *time.Time
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FreightValue      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeliveryDelayDays *int
	ShippingDays      *int
}

// TableName returns the table name for SalesFactModel
func (SalesFactModel) TableName() string { return "fact_sales" }

// ToDomain converts SalesFactModel to a domain SalesFact
func (m *SalesFactModel) ToDomain() warehouse.SalesFact {
	return warehouse.SalesFact{
		SaleID:            m.SaleID,
		OrderID:           m.OrderID,
		OrderItemID:       m.OrderItemID,
		CustomerID:        m.CustomerID,
		SellerID:          m.SellerID,
		ProductID:         m.ProductID,
		OrderDate:         m.OrderDate,
		DeliveryDate:      m.DeliveryDate,
		Price:             m.Price,
		FreightValue:      m.FreightValue,
		TotalAmount:       m.TotalAmount,
		DeliveryDelayDays: m.DeliveryDelayDays,
		ShippingDays:      m.ShippingDays,
	}
}

// SalesFactModelFromDomain builds a persistence model from a domain SalesFact
func SalesFactModelFromDomain(f warehouse.SalesFact) SalesFactModel {
	return SalesFactModel{
		SaleID:            f.SaleID,
		OrderID:           f.OrderID,
		OrderItemID:       f.OrderItemID,
		CustomerID:        f.CustomerID,
		SellerID:          f.SellerID,
		ProductID:         f.ProductID,
		OrderDate:         f.OrderDate,
		DeliveryDate:      f.DeliveryDate,
		Price:             f.Price,
		FreightValue:      f.FreightValue,
		TotalAmount:       f.TotalAmount,
		DeliveryDelayDays: f.DeliveryDelayDays,
		ShippingDays:      f.ShippingDays,
	}
}
