package warehouse

import (
	"sort"
	"time"
)

// Default classification labels
const (
	DefaultCitySize = "Medium"
	DefaultRegion   = "Other"
)

// Tertile labels by ascending quantile
var (
	SizeLabels   = []string{"Small", "Medium", "Large"}
	WeightLabels = []string{"Light", "Medium", "Heavy"}
)

// GeoClassifier derives region and city-size attributes from lookup maps.
// The maps come from configuration so classifications can grow with the
// data instead of silently defaulting.
type GeoClassifier struct {
	citySizes    map[string]string
	stateRegions map[string]string
}

// NewGeoClassifier creates a classifier from city-size and state-region maps.
func NewGeoClassifier(citySizes, stateRegions map[string]string) *GeoClassifier {
	return &GeoClassifier{citySizes: citySizes, stateRegions: stateRegions}
}

// CitySize returns the configured size class for a city, or "Medium" for
// unknown cities.
func (c *GeoClassifier) CitySize(city string) string {
	if size, ok := c.citySizes[city]; ok {
		return size
	}
	return DefaultCitySize
}

// Region returns the configured region for a state, or "Other" for
// unknown states.
func (c *GeoClassifier) Region(state string) string {
	if region, ok := c.stateRegions[state]; ok {
		return region
	}
	return DefaultRegion
}

// BuildDateDims derives one date dimension row per distinct calendar day
// among the order purchase timestamps, ordered by date.
func BuildDateDims(orders []RawOrder) []DateDim {
	seen := make(map[time.Time]struct{}, len(orders))
	var dates []time.Time
	for _, o := range orders {
		day := truncateToDay(o.PurchaseTimestamp)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	dims := make([]DateDim, len(dates))
	for i, d := range dates {
		weekday := int(d.Weekday())
		dims[i] = DateDim{
			Date:      d,
			Day:       d.Day(),
			Month:     int(d.Month()),
			Year:      d.Year(),
			Quarter:   (int(d.Month())-1)/3 + 1,
			DayOfWeek: weekday,
			IsWeekend: weekday == 0 || weekday == 6,
		}
	}
	return dims
}

// BuildCustomerDims augments raw customer rows with derived region and
// city-size attributes. No side effects; the caller owns persistence.
func BuildCustomerDims(customers []RawCustomer, geo *GeoClassifier) []CustomerDim {
	dims := make([]CustomerDim, len(customers))
	for i, c := range customers {
		dims[i] = CustomerDim{
			CustomerID:       c.CustomerID,
			CustomerUniqueID: c.CustomerUniqueID,
			ZipCode:          c.ZipCode,
			City:             c.City,
			State:            c.State,
			Region:           geo.Region(c.State),
			CitySize:         geo.CitySize(c.City),
		}
	}
	return dims
}

// BuildSellerDims augments raw seller rows with derived region and
// city-size attributes.
func BuildSellerDims(sellers []RawSeller, geo *GeoClassifier) []SellerDim {
	dims := make([]SellerDim, len(sellers))
	for i, s := range sellers {
		dims[i] = SellerDim{
			SellerID: s.SellerID,
			ZipCode:  s.ZipCode,
			City:     s.City,
			State:    s.State,
			Region:   geo.Region(s.State),
			CitySize: geo.CitySize(s.City),
		}
	}
	return dims
}

// ProductBinning holds the bins used to classify product size and weight.
type ProductBinning struct {
	Size   QuantileBins
	Weight QuantileBins
}

// NewBatchProductBinning derives tertile bins for volume and weight from
// the current batch. Labels are batch-relative: a product can land in a
// different category on a run with different batch composition.
func NewBatchProductBinning(products []RawProduct) (ProductBinning, error) {
	if len(products) == 0 {
		return ProductBinning{}, NewValidationError("product_binning", "empty product batch")
	}
	volumes := make([]float64, len(products))
	weights := make([]float64, len(products))
	for i, p := range products {
		volumes[i] = p.LengthCm * p.HeightCm * p.WidthCm
		weights[i] = p.WeightG
	}
	size, err := NewQuantileBins(volumes, SizeLabels)
	if err != nil {
		return ProductBinning{}, err
	}
	weight, err := NewQuantileBins(weights, WeightLabels)
	if err != nil {
		return ProductBinning{}, err
	}
	return ProductBinning{Size: size, Weight: weight}, nil
}

// NewFixedProductBinning builds bins from configured breakpoints,
// making category labels stable across runs.
func NewFixedProductBinning(volumeBreaks, weightBreaks []float64) (ProductBinning, error) {
	size, err := FixedBins(volumeBreaks, SizeLabels)
	if err != nil {
		return ProductBinning{}, err
	}
	weight, err := FixedBins(weightBreaks, WeightLabels)
	if err != nil {
		return ProductBinning{}, err
	}
	return ProductBinning{Size: size, Weight: weight}, nil
}

// BuildProductDims augments raw product rows with volume and the binned
// size/weight categories.
func BuildProductDims(products []RawProduct, binning ProductBinning) []ProductDim {
	dims := make([]ProductDim, len(products))
	for i, p := range products {
		volume := p.LengthCm * p.HeightCm * p.WidthCm
		dims[i] = ProductDim{
			ProductID:      p.ProductID,
			CategoryName:   p.CategoryName,
			WeightG:        p.WeightG,
			LengthCm:       p.LengthCm,
			HeightCm:       p.HeightCm,
			WidthCm:        p.WidthCm,
			VolumeCm3:      volume,
			SizeCategory:   binning.Size.Label(volume),
			WeightCategory: binning.Weight.Label(p.WeightG),
		}
	}
	return dims
}

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
