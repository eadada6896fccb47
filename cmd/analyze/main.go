package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/olist/olap-engine/internal/application/analysis"
	"github.com/olist/olap-engine/internal/infrastructure/cache"
	"github.com/olist/olap-engine/internal/infrastructure/config"
	"github.com/olist/olap-engine/internal/infrastructure/logger"
	"github.com/olist/olap-engine/internal/infrastructure/persistence"
)

func main() {
	var (
		analysisDateStr string
		topN            int
		topBy           string
	)
	flag.StringVar(&analysisDateStr, "analysis-date", "", "Reference date for recency metrics, YYYY-MM-DD (default: today)")
	flag.IntVar(&topN, "show-top", 0, "Read back and log the top N customers and days from the refreshed marts")
	flag.StringVar(&topBy, "top-by", "monetary", "RFM column to rank customers by (recency_days, frequency, monetary, rfm_score)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	analysisDate := time.Now().UTC().Truncate(24 * time.Hour)
	if analysisDateStr != "" {
		analysisDate, err = time.Parse("2006-01-02", analysisDateStr)
		if err != nil {
			log.Fatal("Invalid analysis date", zap.String("value", analysisDateStr), zap.Error(err))
		}
	}

	log.Info("Analysis run starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Time("analysis_date", analysisDate))

	// Connect to the warehouse database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormlogger.Warn)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB, cfg.Transform.ChunkSize)
	martRepo := persistence.NewGormMartRepository(db.DB)

	opts := []analysis.ServiceOption{}
	if cfg.Cache.Enabled {
		factory := cache.NewResultCacheFactory(cfg.Redis, cache.WithLogger(log))
		resultCache, err := factory.CreateCache()
		if err != nil {
			log.Fatal("Failed to create result cache", zap.Error(err))
		}
		defer resultCache.Close()
		opts = append(opts, analysis.WithResultCache(resultCache))
	}

	svc := analysis.NewService(warehouseRepo, martRepo, analysis.ConfigFromApp(cfg), log, opts...)

	results, err := svc.Run(ctx, analysisDate)
	if err != nil {
		log.Fatal("Analysis run failed", zap.Error(err))
	}

	if cfg.Export.Enabled {
		exporter := analysis.NewExporter(cfg.Export.Dir, log)
		if err := exporter.Export(results); err != nil {
			log.Fatal("Export failed", zap.Error(err))
		}
	}

	if topN > 0 {
		showTop(ctx, martRepo, log, topBy, topN)
	}

	if results.Failed() {
		for name, msg := range results.Failures {
			log.Error("Analysis did not complete", zap.String("analysis", name), zap.String("reason", msg))
		}
		os.Exit(1)
	}

	log.Info("Analysis run finished",
		zap.Int("rfm_records", len(results.RFM)),
		zap.Int("basket_pairs", len(results.BasketPairs)),
		zap.Int("forecast_points", len(results.Forecast)),
		zap.Duration("duration", results.Duration))
}

// showTop reads the refreshed marts back from the warehouse, which also
// confirms the run's rows actually landed.
func showTop(ctx context.Context, marts *persistence.GormMartRepository, log *zap.Logger, topBy string, n int) {
	customers, err := marts.FindTopRFM(ctx, topBy, "desc", n)
	if err != nil {
		log.Error("Failed to read RFM mart", zap.Error(err))
	}
	for i, rec := range customers {
		log.Info("Top customer",
			zap.Int("rank", i+1),
			zap.String("customer_id", rec.CustomerID),
			zap.String("rfm_score", rec.RFMScore),
			zap.Int("frequency", rec.Frequency),
			zap.String("monetary", rec.Monetary.StringFixed(2)))
	}

	days, err := marts.FindTopDailySales(ctx, "total_revenue", "desc", n)
	if err != nil {
		log.Error("Failed to read daily sales mart", zap.Error(err))
	}
	for i, day := range days {
		log.Info("Top sales day",
			zap.Int("rank", i+1),
			zap.Time("date", day.Date),
			zap.Int64("orders", day.TotalOrders),
			zap.String("revenue", day.TotalRevenue.StringFixed(2)))
	}
}
