package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

func revenueSeries(start time.Time, values ...float64) []RevenuePoint {
	points := make([]RevenuePoint, len(values))
	for i, v := range values {
		points[i] = RevenuePoint{Date: start.AddDate(0, 0, i), Revenue: decimal.NewFromFloat(v)}
	}
	return points
}

func TestForecast_FlatSeries(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := revenueSeries(start, 100, 100, 100, 100, 100, 100, 100)

	points, err := Forecast(series, DefaultForecastConfig())
	require.NoError(t, err)
	require.Len(t, points, 30)

	// Flat history: both moving averages and the trend sit at 100.
	for _, p := range points {
		assert.InDelta(t, 100.0, p.ForecastedRevenue.InexactFloat64(), 1e-6)
	}
}

func TestForecast_ConsecutiveDates(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := revenueSeries(start, 10, 20, 30)

	cfg := DefaultForecastConfig()
	cfg.Horizon = 5
	points, err := Forecast(series, cfg)
	require.NoError(t, err)
	require.Len(t, points, 5)

	last := series[len(series)-1].Date
	for i, p := range points {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date)
	}
}

func TestForecast_RisingTrend(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := revenueSeries(start, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	cfg := DefaultForecastConfig()
	cfg.Horizon = 3
	points, err := Forecast(series, cfg)
	require.NoError(t, err)

	// The trend component grows with the day index.
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].ForecastedRevenue.GreaterThan(points[i-1].ForecastedRevenue))
	}
}

func TestForecast_BoundsAlwaysZero(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := revenueSeries(start, 5, 15, 25)

	points, err := Forecast(series, DefaultForecastConfig())
	require.NoError(t, err)
	for _, p := range points {
		assert.True(t, p.ConfidenceLower.IsZero())
		assert.True(t, p.ConfidenceUpper.IsZero())
	}
}

func TestForecast_InvalidInput(t *testing.T) {
	var verr *warehouse.ValidationError

	_, err := Forecast(nil, DefaultForecastConfig())
	require.ErrorAs(t, err, &verr)

	cfg := DefaultForecastConfig()
	cfg.Horizon = 0
	_, err = Forecast(revenueSeries(time.Now(), 1), cfg)
	require.ErrorAs(t, err, &verr)
}

func TestFillDailyGaps(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC) }
	points := []RevenuePoint{
		{Date: d(5), Revenue: decimal.NewFromInt(50)},
		{Date: d(1), Revenue: decimal.NewFromInt(10)},
		{Date: d(3), Revenue: decimal.NewFromInt(30)},
	}

	filled := FillDailyGaps(points)
	require.Len(t, filled, 5)

	for i, p := range filled {
		assert.Equal(t, d(i+1), p.Date)
	}
	assert.True(t, filled[0].Revenue.Equal(decimal.NewFromInt(10)))
	assert.True(t, filled[1].Revenue.IsZero())
	assert.True(t, filled[2].Revenue.Equal(decimal.NewFromInt(30)))
	assert.True(t, filled[3].Revenue.IsZero())
	assert.True(t, filled[4].Revenue.Equal(decimal.NewFromInt(50)))
}

func TestFillDailyGaps_Empty(t *testing.T) {
	assert.Nil(t, FillDailyGaps(nil))
}
