package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/olist/olap-engine/internal/application/etl"
	"github.com/olist/olap-engine/internal/infrastructure/config"
	"github.com/olist/olap-engine/internal/infrastructure/logger"
	"github.com/olist/olap-engine/internal/infrastructure/persistence"
)

func main() {
	var (
		dataDir     string
		previewRows int
		previewBy   string
	)
	flag.StringVar(&dataDir, "data-dir", "", "Override the configured source data directory")
	flag.IntVar(&previewRows, "preview", 0, "Read back and log the top N loaded facts after the run")
	flag.StringVar(&previewBy, "preview-by", "sale_id", "Fact column to rank the preview by (sale_id, order_date, total_amount, ...)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if dataDir != "" {
		cfg.Extract.DataDir = dataDir
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

	log.Info("ETL pipeline starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("data_dir", cfg.Extract.DataDir))

	// Connect to the warehouse database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormlogger.Warn)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources, err := etl.OpenSources(cfg.Extract)
	if err != nil {
		log.Fatal("Failed to open source files", zap.Error(err))
	}
	defer sources.Close()

	repo := persistence.NewGormWarehouseRepository(db.DB, cfg.Transform.ChunkSize)
	pipeline := etl.NewPipelineService(repo, cfg.Transform, log)

	report, err := pipeline.Run(ctx, sources.SourceReaders)
	if err != nil {
		log.Fatal("Pipeline run failed", zap.Error(err))
	}

	// Read the freshest rows back through the repository to confirm the
	// load is queryable.
	if previewRows > 0 {
		facts, err := repo.FindFactsSorted(ctx, previewBy, "desc", previewRows, 0)
		if err != nil {
			log.Error("Failed to read back loaded facts", zap.Error(err))
		}
		for _, f := range facts {
			log.Info("Loaded fact",
				zap.Int64("sale_id", f.SaleID),
				zap.String("order_id", f.OrderID),
				zap.Time("order_date", f.OrderDate),
				zap.String("total_amount", f.TotalAmount.StringFixed(2)))
		}
	}

	log.Info("ETL pipeline finished",
		zap.Int("fact_rows", report.FactsLoaded),
		zap.Int("orphan_items", report.Transform.OrphanItems),
		zap.Int("orphan_orders", report.Transform.OrphanOrders),
		zap.Duration("duration", report.Duration))
}
