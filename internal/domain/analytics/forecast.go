package analytics

import (
	"sort"
	"time"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// RevenuePoint is one day of observed revenue.
type RevenuePoint struct {
	Date    time.Time
	Revenue decimal.Decimal
}

// ForecastPoint is one projected day of revenue. Confidence bounds are
// not modelled and always zero; callers needing interval estimates must
// layer a separate model.
type ForecastPoint struct {
	Date              time.Time       `json:"date"`
	ForecastedRevenue decimal.Decimal `json:"forecasted_revenue"`
	ConfidenceLower   decimal.Decimal `json:"confidence_lower"`
	ConfidenceUpper   decimal.Decimal `json:"confidence_upper"`
}

// ForecastConfig holds the smoothing and blending parameters.
type ForecastConfig struct {
	Horizon     int
	ShortWindow int
	LongWindow  int
	WeightShort float64
	WeightLong  float64
	WeightTrend float64
}

// DefaultForecastConfig returns the standard blend: half short moving
// average, a third long moving average, the rest linear trend.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:     30,
		ShortWindow: 7,
		LongWindow:  30,
		WeightShort: 0.5,
		WeightLong:  0.3,
		WeightTrend: 0.2,
	}
}

// FillDailyGaps sorts the series by date and inserts zero-revenue points
// for missing calendar days. Moving averages and the trend index assume
// one point per day; skipping empty days would misalign both.
func FillDailyGaps(points []RevenuePoint) []RevenuePoint {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]RevenuePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := []RevenuePoint{sorted[0]}
	for _, p := range sorted[1:] {
		prev := out[len(out)-1].Date
		for d := prev.AddDate(0, 0, 1); d.Before(p.Date); d = d.AddDate(0, 0, 1) {
			out = append(out, RevenuePoint{Date: d, Revenue: decimal.Zero})
		}
		out = append(out, p)
	}
	return out
}

// Forecast extrapolates future daily revenue from trailing moving
// averages and a least-squares linear trend over the day index. The
// output holds exactly cfg.Horizon points on consecutive calendar days
// starting the day after the last observed date.
func Forecast(series []RevenuePoint, cfg ForecastConfig) ([]ForecastPoint, error) {
	if len(series) == 0 {
		return nil, warehouse.NewValidationError("forecast", "empty revenue series")
	}
	if cfg.Horizon <= 0 {
		return nil, warehouse.NewValidationError("forecast", "horizon must be positive")
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Revenue.InexactFloat64()
	}

	maShort := trailingMean(values, cfg.ShortWindow)
	maLong := trailingMean(values, cfg.LongWindow)
	slope, intercept := linearTrend(values)

	n := len(values)
	lastDate := series[n-1].Date
	points := make([]ForecastPoint, cfg.Horizon)
	for i := 0; i < cfg.Horizon; i++ {
		trend := slope*float64(n+i) + intercept
		forecast := cfg.WeightShort*maShort + cfg.WeightLong*maLong + cfg.WeightTrend*trend
		points[i] = ForecastPoint{
			Date:              lastDate.AddDate(0, 0, i+1),
			ForecastedRevenue: decimal.NewFromFloat(forecast),
			ConfidenceLower:   decimal.Zero,
			ConfidenceUpper:   decimal.Zero,
		}
	}
	return points, nil
}

// trailingMean averages the last window values; the window shrinks when
// the series is shorter.
func trailingMean(values []float64, window int) float64 {
	if window <= 0 || window > len(values) {
		window = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// linearTrend fits y = slope*x + intercept by least squares over the
// integer day index. A single-point series yields a flat trend.
func linearTrend(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) == 1 {
		return 0, values[0]
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
