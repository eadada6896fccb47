package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olist/olap-engine/internal/domain/analytics"
	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/olist/olap-engine/internal/infrastructure/cache"
	"github.com/olist/olap-engine/internal/infrastructure/config"
)

// WarehouseReader loads the warehouse snapshot the analyses run over.
type WarehouseReader interface {
	FindAllFacts(ctx context.Context) ([]warehouse.SalesFact, error)
	FindAllCustomerDims(ctx context.Context) ([]warehouse.CustomerDim, error)
	FindAllSellerDims(ctx context.Context) ([]warehouse.SellerDim, error)
	FindAllProductDims(ctx context.Context) ([]warehouse.ProductDim, error)
}

// MartWriter persists analysis outputs.
type MartWriter interface {
	ReplaceDailySales(ctx context.Context, rows []analytics.DailySalesRow) error
	ReplaceCategoryPerformance(ctx context.Context, rows []analytics.CategoryPerformanceRow) error
	ReplaceCustomerSegmentSummary(ctx context.Context, rows []analytics.CustomerSegmentRow) error
	ReplaceSellerPerformance(ctx context.Context, rows []analytics.SellerPerformanceRow) error
	ReplaceCustomerRFM(ctx context.Context, records []analytics.RFMRecord) error
	ReplaceCustomerSegments(ctx context.Context, records []analytics.SegmentRecord) error
	ReplaceBasketPairs(ctx context.Context, pairs []analytics.BasketPair) error
	ReplaceRevenueForecast(ctx context.Context, points []analytics.ForecastPoint) error
}

// Cache key per analysis output.
const (
	KeyDailySales          = "daily_sales"
	KeyCategoryPerformance = "category_performance"
	KeySegmentSummary      = "customer_segments"
	KeySellerPerformance   = "seller_performance"
	KeyCustomerRFM         = "customer_rfm"
	KeySegmentLabels       = "segment_labels"
	KeyBasketPairs         = "basket_pairs"
	KeyRevenueForecast     = "revenue_forecast"
)

// Config holds the analysis parameters.
type Config struct {
	Segmentation analytics.SegmentThresholds
	Basket       analytics.BasketConfig
	Forecast     analytics.ForecastConfig
	CacheTTL     time.Duration
}

// ConfigFromApp maps application configuration onto analysis parameters.
func ConfigFromApp(c *config.Config) Config {
	return Config{
		Segmentation: analytics.SegmentThresholds{
			VIPMinFrequency:     c.Segmentation.VIPMinFrequency,
			VIPMinSpent:         decimal.NewFromFloat(c.Segmentation.VIPMinSpent),
			LoyalMinFrequency:   c.Segmentation.LoyalMinFrequency,
			LoyalMinSpent:       decimal.NewFromFloat(c.Segmentation.LoyalMinSpent),
			RegularMinFrequency: c.Segmentation.RegularMinFrequency,
			RegularMinSpent:     decimal.NewFromFloat(c.Segmentation.RegularMinSpent),
			NewMaxRecencyDays:   c.Segmentation.NewMaxRecencyDays,
		},
		Basket: analytics.BasketConfig{
			MinSupport:            c.Basket.MinSupport,
			MinConfidence:         c.Basket.MinConfidence,
			MaxCategoriesPerOrder: c.Basket.MaxCategoriesPerOrder,
		},
		Forecast: analytics.ForecastConfig{
			Horizon:     c.Forecast.Horizon,
			ShortWindow: c.Forecast.ShortWindow,
			LongWindow:  c.Forecast.LongWindow,
			WeightShort: c.Forecast.WeightShort,
			WeightLong:  c.Forecast.WeightLong,
			WeightTrend: c.Forecast.WeightTrend,
		},
		CacheTTL: c.Cache.TTL,
	}
}

// Results holds every analysis output of one run, plus per-analysis
// failures. A failed analysis never blocks the others.
type Results struct {
	RunID        string
	AnalysisDate time.Time

	DailySales          []analytics.DailySalesRow
	CategoryPerformance []analytics.CategoryPerformanceRow
	SegmentSummary      []analytics.CustomerSegmentRow
	SellerPerformance   []analytics.SellerPerformanceRow
	RFM                 []analytics.RFMRecord
	Segments            []analytics.SegmentRecord
	BasketPairs         []analytics.BasketPair
	BasketReport        *analytics.BasketReport
	Forecast            []analytics.ForecastPoint

	Failures map[string]string
	Duration time.Duration
}

// Failed reports whether any analysis or persistence step failed.
func (r *Results) Failed() bool {
	return len(r.Failures) > 0
}

// Service runs the analysis suite over an immutable warehouse snapshot
// and persists the outputs as mart tables.
type Service struct {
	warehouse WarehouseReader
	marts     MartWriter
	cfg       Config
	cache     cache.ResultCache
	logger    *zap.Logger
}

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithResultCache attaches a result cache. Cached entries let consumers
// skip a mart read; cache errors degrade to recomputation
func WithResultCache(c cache.ResultCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// NewService creates a new analysis Service
func NewService(wh WarehouseReader, marts MartWriter, cfg Config, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		warehouse: wh,
		marts:     marts,
		cfg:       cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot is the immutable input of one analysis run. Tasks share it
// read-only, so they can run concurrently without copies.
type snapshot struct {
	facts     []warehouse.SalesFact
	customers []warehouse.CustomerDim
	sellers   []warehouse.SellerDim
	products  []warehouse.ProductDim
}

// Run loads the warehouse snapshot, computes every analysis, and
// replaces the mart tables with the outputs. Analyses run concurrently;
// a failure in one is recorded in Results.Failures and the rest proceed.
func (s *Service) Run(ctx context.Context, analysisDate time.Time) (*Results, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.facts) == 0 {
		return nil, warehouse.WrapValidationError("analysis", "no fact rows in warehouse", warehouse.ErrEmptyBatch)
	}

	logger.Info("analysis snapshot loaded",
		zap.Int("facts", len(snap.facts)),
		zap.Int("customers", len(snap.customers)),
		zap.Int("sellers", len(snap.sellers)),
		zap.Int("products", len(snap.products)))

	results := &Results{
		RunID:        runID,
		AnalysisDate: analysisDate,
		Failures:     make(map[string]string),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	fail := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		results.Failures[name] = err.Error()
		logger.Error("analysis failed", zap.String("analysis", name), zap.Error(err))
	}
	run := func(name string, task func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task(); err != nil {
				fail(name, err)
			}
		}()
	}

	run("sales_marts", func() error {
		results.DailySales = analytics.DailySales(snap.facts)
		results.CategoryPerformance = analytics.CategoryPerformance(snap.facts, snap.products)
		results.SegmentSummary = analytics.CustomerSegmentSummary(snap.facts, snap.customers)
		results.SellerPerformance = analytics.SellerPerformance(snap.facts, snap.sellers)
		return nil
	})
	run(KeyCustomerRFM, func() error {
		records, err := analytics.ScoreRFM(snap.facts, analysisDate)
		if err != nil {
			return err
		}
		results.RFM = records
		return nil
	})
	run(KeySegmentLabels, func() error {
		records, err := analytics.SegmentCustomers(snap.facts, analysisDate, s.cfg.Segmentation)
		if err != nil {
			return err
		}
		results.Segments = records
		return nil
	})
	run(KeyBasketPairs, func() error {
		pairs, report, err := analytics.AnalyzeBaskets(snap.facts, snap.products, s.cfg.Basket)
		if err != nil {
			return err
		}
		results.BasketPairs = pairs
		results.BasketReport = report
		return nil
	})
	run(KeyRevenueForecast, func() error {
		series := revenueSeries(snap.facts)
		points, err := analytics.Forecast(analytics.FillDailyGaps(series), s.cfg.Forecast)
		if err != nil {
			return err
		}
		results.Forecast = points
		return nil
	})

	wg.Wait()

	s.persist(ctx, results, fail)
	results.Duration = time.Since(started)

	logger.Info("analysis run complete",
		zap.Int("daily_sales", len(results.DailySales)),
		zap.Int("rfm_records", len(results.RFM)),
		zap.Int("segment_records", len(results.Segments)),
		zap.Int("basket_pairs", len(results.BasketPairs)),
		zap.Int("forecast_points", len(results.Forecast)),
		zap.Int("failures", len(results.Failures)),
		zap.Duration("duration", results.Duration))

	return results, nil
}

// loadSnapshot reads the fact table and dimensions once.
func (s *Service) loadSnapshot(ctx context.Context) (*snapshot, error) {
	facts, err := s.warehouse.FindAllFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	customers, err := s.warehouse.FindAllCustomerDims(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer dims: %w", err)
	}
	sellers, err := s.warehouse.FindAllSellerDims(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seller dims: %w", err)
	}
	products, err := s.warehouse.FindAllProductDims(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product dims: %w", err)
	}
	return &snapshot{facts: facts, customers: customers, sellers: sellers, products: products}, nil
}

// persist replaces mart tables for every analysis that succeeded. Each
// write failure is recorded against its mart and the rest still load.
func (s *Service) persist(ctx context.Context, r *Results, fail func(string, error)) {
	write := func(name string, failed bool, op func() error, cacheValue any) {
		if failed {
			return
		}
		if err := op(); err != nil {
			fail(name, fmt.Errorf("persist mart: %w", err))
			return
		}
		s.cacheSet(ctx, name, cacheValue)
	}

	_, martsFailed := r.Failures["sales_marts"]
	write(KeyDailySales, martsFailed, func() error {
		return s.marts.ReplaceDailySales(ctx, r.DailySales)
	}, r.DailySales)
	write(KeyCategoryPerformance, martsFailed, func() error {
		return s.marts.ReplaceCategoryPerformance(ctx, r.CategoryPerformance)
	}, r.CategoryPerformance)
	write(KeySegmentSummary, martsFailed, func() error {
		return s.marts.ReplaceCustomerSegmentSummary(ctx, r.SegmentSummary)
	}, r.SegmentSummary)
	write(KeySellerPerformance, martsFailed, func() error {
		return s.marts.ReplaceSellerPerformance(ctx, r.SellerPerformance)
	}, r.SellerPerformance)

	_, rfmFailed := r.Failures[KeyCustomerRFM]
	write(KeyCustomerRFM, rfmFailed, func() error {
		return s.marts.ReplaceCustomerRFM(ctx, r.RFM)
	}, r.RFM)

	_, segFailed := r.Failures[KeySegmentLabels]
	write(KeySegmentLabels, segFailed, func() error {
		return s.marts.ReplaceCustomerSegments(ctx, r.Segments)
	}, r.Segments)

	_, basketFailed := r.Failures[KeyBasketPairs]
	write(KeyBasketPairs, basketFailed, func() error {
		return s.marts.ReplaceBasketPairs(ctx, r.BasketPairs)
	}, r.BasketPairs)

	_, forecastFailed := r.Failures[KeyRevenueForecast]
	write(KeyRevenueForecast, forecastFailed, func() error {
		return s.marts.ReplaceRevenueForecast(ctx, r.Forecast)
	}, r.Forecast)
}

// cacheSet stores an output in the result cache. Cache errors are logged
// and otherwise ignored; consumers fall back to the mart tables.
func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache analysis result",
			zap.String("key", key), zap.Error(err))
	}
}

// revenueSeries folds fact rows into one revenue point per order date.
func revenueSeries(facts []warehouse.SalesFact) []analytics.RevenuePoint {
	byDay := make(map[time.Time]decimal.Decimal)
	for _, f := range facts {
		day := time.Date(f.OrderDate.Year(), f.OrderDate.Month(), f.OrderDate.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] = byDay[day].Add(f.TotalAmount)
	}
	series := make([]analytics.RevenuePoint, 0, len(byDay))
	for day, revenue := range byDay {
		series = append(series, analytics.RevenuePoint{Date: day, Revenue: revenue})
	}
	return series
}
