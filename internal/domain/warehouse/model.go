package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawCustomer is a customer row as delivered by the upstream extract.
type RawCustomer struct {
	CustomerID       string `validate:"required"`
	CustomerUniqueID string `validate:"required"`
	ZipCode          string
	City             string
	State            string
}

// RawOrder is an order row as delivered by the upstream extract.
type RawOrder struct {
	OrderID               string    `validate:"required"`
	CustomerID            string    `validate:"required"`
	Status                string
	PurchaseTimestamp     time.Time `validate:"required"`
	ApprovedAt            *time.Time
	DeliveredCarrierDate  *time.Time
	DeliveredCustomerDate *time.Time
	EstimatedDeliveryDate *time.Time
}

// RawOrderItem is an order line item row as delivered by the upstream extract.
type RawOrderItem struct {
	OrderID      string `validate:"required"`
	OrderItemID  int    `validate:"gte=1"`
	ProductID    string `validate:"required"`
	SellerID     string `validate:"required"`
	Price        decimal.Decimal
	FreightValue decimal.Decimal
}

// RawProduct is a product row as delivered by the upstream extract.
type RawProduct struct {
	ProductID    string `validate:"required"`
	CategoryName string
	WeightG      float64 `validate:"gte=0"`
	LengthCm     float64 `validate:"gte=0"`
	HeightCm     float64 `validate:"gte=0"`
	WidthCm      float64 `validate:"gte=0"`
}

// RawSeller is a seller row as delivered by the upstream extract.
type RawSeller struct {
	SellerID string `validate:"required"`
	ZipCode  string
	City     string
	State    string
}

// DateDim is a calendar date dimension row. Built once per distinct
// order date and immutable after creation.
type DateDim struct {
	Date    time.Time
	Day     int
	Month   int
	Year    int
	Quarter int
	// DayOfWeek follows time.Weekday numbering: Sunday is 0, Saturday
	// is 6.
	DayOfWeek int
	IsWeekend bool
}

// CustomerDim is a customer dimension row with derived classification
// attributes. Upserted by CustomerID; derived attributes may be
// overwritten on later runs.
type CustomerDim struct {
	CustomerID       string
	CustomerUniqueID string
	ZipCode          string
	City             string
	State            string
	Region           string
	CitySize         string
}

// SellerDim is a seller dimension row. Same upsert semantics as CustomerDim.
type SellerDim struct {
	SellerID string
	ZipCode  string
	City     string
	State    string
	Region   string
	CitySize string
}

// ProductDim is a product dimension row. SizeCategory and WeightCategory
// are derived by quantile binning and, in batch mode, depend on the
// composition of the transform batch.
type ProductDim struct {
	ProductID      string
	CategoryName   string
	WeightG        float64
	LengthCm       float64
	HeightCm       float64
	WidthCm        float64
	VolumeCm3      float64
	SizeCategory   string
	WeightCategory string
}

// SalesFact is one order item joined with its order. Append-only: a fact
// row is never mutated after creation; corrections are re-appended by a
// new transform run.
type SalesFact struct {
	SaleID            int64
	OrderID           string
	OrderItemID       int
	CustomerID        string
	SellerID          string
	ProductID         string
	OrderDate         time.Time
	DeliveryDate      *time.Time
	Price             decimal.Decimal
	FreightValue      decimal.Decimal
	TotalAmount       decimal.Decimal
	DeliveryDelayDays *int
	ShippingDays      *int
}

// Delivered reports whether the order carrying this fact row has reached
// the customer.
func (f SalesFact) Delivered() bool {
	return f.DeliveryDate != nil
}
