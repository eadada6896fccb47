package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeoClassifier() *GeoClassifier {
	return NewGeoClassifier(
		map[string]string{"Sao Paulo": "Large", "Rio de Janeiro": "Large"},
		map[string]string{"SP": "Southeast", "RJ": "Southeast"},
	)
}

func TestGeoClassifier_Defaults(t *testing.T) {
	geo := testGeoClassifier()

	assert.Equal(t, "Large", geo.CitySize("Sao Paulo"))
	assert.Equal(t, "Medium", geo.CitySize("Curitiba"))
	assert.Equal(t, "Southeast", geo.Region("SP"))
	assert.Equal(t, "Other", geo.Region("BA"))
}

func TestBuildDateDims(t *testing.T) {
	orders := []RawOrder{
		{OrderID: "o1", CustomerID: "c1", PurchaseTimestamp: time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)},  // Saturday
		{OrderID: "o2", CustomerID: "c2", PurchaseTimestamp: time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC)},    // same day
		{OrderID: "o3", CustomerID: "c3", PurchaseTimestamp: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)},   // Sunday
		{OrderID: "o4", CustomerID: "c4", PurchaseTimestamp: time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)},  // Monday
	}

	dims := BuildDateDims(orders)
	require.Len(t, dims, 3)

	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), dims[0].Date)
	assert.Equal(t, 9, dims[0].Day)
	assert.Equal(t, 3, dims[0].Month)
	assert.Equal(t, 2024, dims[0].Year)
	assert.Equal(t, 1, dims[0].Quarter)
	assert.Equal(t, 6, dims[0].DayOfWeek)
	assert.True(t, dims[0].IsWeekend)

	// time.Weekday numbering: Sunday is 0.
	assert.Equal(t, 0, dims[1].DayOfWeek)
	assert.True(t, dims[1].IsWeekend)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), dims[2].Date)
	assert.Equal(t, 1, dims[2].DayOfWeek)
	assert.False(t, dims[2].IsWeekend)
}

func TestBuildDateDims_Quarters(t *testing.T) {
	tests := []struct {
		month   time.Month
		quarter int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tt := range tests {
		orders := []RawOrder{{OrderID: "o", CustomerID: "c", PurchaseTimestamp: time.Date(2024, tt.month, 15, 0, 0, 0, 0, time.UTC)}}
		dims := BuildDateDims(orders)
		require.Len(t, dims, 1)
		assert.Equal(t, tt.quarter, dims[0].Quarter, "month %v", tt.month)
	}
}

func TestBuildCustomerDims(t *testing.T) {
	customers := []RawCustomer{
		{CustomerID: "c1", CustomerUniqueID: "u1", City: "Sao Paulo", State: "SP"},
		{CustomerID: "c2", CustomerUniqueID: "u2", City: "Salvador", State: "BA"},
	}

	dims := BuildCustomerDims(customers, testGeoClassifier())
	require.Len(t, dims, 2)

	assert.Equal(t, "Southeast", dims[0].Region)
	assert.Equal(t, "Large", dims[0].CitySize)
	assert.Equal(t, "Other", dims[1].Region)
	assert.Equal(t, "Medium", dims[1].CitySize)
}

func TestBuildSellerDims(t *testing.T) {
	sellers := []RawSeller{{SellerID: "s1", City: "Rio de Janeiro", State: "RJ"}}

	dims := BuildSellerDims(sellers, testGeoClassifier())
	require.Len(t, dims, 1)
	assert.Equal(t, "s1", dims[0].SellerID)
	assert.Equal(t, "Southeast", dims[0].Region)
	assert.Equal(t, "Large", dims[0].CitySize)
}

func TestBuildProductDims_VolumeIdentity(t *testing.T) {
	products := []RawProduct{
		{ProductID: "p1", CategoryName: "toys", WeightG: 100, LengthCm: 10, HeightCm: 5, WidthCm: 2},
		{ProductID: "p2", CategoryName: "toys", WeightG: 900, LengthCm: 30, HeightCm: 20, WidthCm: 10},
		{ProductID: "p3", CategoryName: "books", WeightG: 400, LengthCm: 20, HeightCm: 10, WidthCm: 5},
	}

	binning, err := NewBatchProductBinning(products)
	require.NoError(t, err)
	dims := BuildProductDims(products, binning)
	require.Len(t, dims, 3)

	for i, d := range dims {
		assert.Equal(t, products[i].LengthCm*products[i].HeightCm*products[i].WidthCm, d.VolumeCm3)
	}
}

func TestBuildProductDims_TertileCategories(t *testing.T) {
	products := []RawProduct{
		{ProductID: "p1", WeightG: 100, LengthCm: 1, HeightCm: 1, WidthCm: 1},   // volume 1
		{ProductID: "p2", WeightG: 500, LengthCm: 10, HeightCm: 1, WidthCm: 1},  // volume 10
		{ProductID: "p3", WeightG: 2000, LengthCm: 10, HeightCm: 10, WidthCm: 1}, // volume 100
	}

	binning, err := NewBatchProductBinning(products)
	require.NoError(t, err)
	dims := BuildProductDims(products, binning)

	assert.Equal(t, "Small", dims[0].SizeCategory)
	assert.Equal(t, "Medium", dims[1].SizeCategory)
	assert.Equal(t, "Large", dims[2].SizeCategory)
	assert.Equal(t, "Light", dims[0].WeightCategory)
	assert.Equal(t, "Medium", dims[1].WeightCategory)
	assert.Equal(t, "Heavy", dims[2].WeightCategory)
}

func TestBuildProductDims_FixedBinning(t *testing.T) {
	binning, err := NewFixedProductBinning([]float64{1000, 10000}, []float64{500, 2000})
	require.NoError(t, err)

	products := []RawProduct{
		{ProductID: "p1", WeightG: 100, LengthCm: 5, HeightCm: 5, WidthCm: 5},     // volume 125
		{ProductID: "p2", WeightG: 3000, LengthCm: 30, HeightCm: 30, WidthCm: 30}, // volume 27000
	}
	dims := BuildProductDims(products, binning)

	assert.Equal(t, "Small", dims[0].SizeCategory)
	assert.Equal(t, "Light", dims[0].WeightCategory)
	assert.Equal(t, "Large", dims[1].SizeCategory)
	assert.Equal(t, "Heavy", dims[1].WeightCategory)
}

func TestNewBatchProductBinning_EmptyBatch(t *testing.T) {
	_, err := NewBatchProductBinning(nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
