package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	Extract      ExtractConfig
	Transform    TransformConfig
	Segmentation SegmentationConfig
	Basket       BasketConfig
	Forecast     ForecastConfig
	Cache        CacheConfig
	Export       ExportConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ExtractConfig holds source dataset settings
type ExtractConfig struct {
	DataDir        string
	CustomersFile  string
	OrdersFile     string
	OrderItemsFile string
	ProductsFile   string
	SellersFile    string
}

// TransformConfig holds the warehouse build settings
type TransformConfig struct {
	ChunkSize         int
	JoinMode          warehouse.JoinMode
	QuantileMode      warehouse.QuantileMode
	FixedVolumeBreaks []float64 // required when quantile_mode is "fixed"
	FixedWeightBreaks []float64
	CitySizes         map[string]string // city name -> Small/Medium/Large
	StateRegions      map[string]string // state code -> region name
}

// SegmentationConfig holds the customer segmentation rule cutoffs
type SegmentationConfig struct {
	VIPMinFrequency     int
	VIPMinSpent         float64
	LoyalMinFrequency   int
	LoyalMinSpent       float64
	RegularMinFrequency int
	RegularMinSpent     float64
	NewMaxRecencyDays   int
}

// BasketConfig holds market-basket association thresholds
type BasketConfig struct {
	MinSupport            float64
	MinConfidence         float64
	MaxCategoriesPerOrder int
}

// ForecastConfig holds revenue forecasting parameters
type ForecastConfig struct {
	Horizon     int
	ShortWindow int
	LongWindow  int
	WeightShort float64
	WeightLong  float64
	WeightTrend float64
}

// CacheConfig holds analysis result cache settings
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ExportConfig holds CSV export settings
type ExportConfig struct {
	Enabled bool
	Dir     string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ECOM_ prefix (e.g., ECOM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ECOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	volumeBreaks, err := floatSlice(v.GetStringSlice("transform.fixed_volume_breaks"))
	if err != nil {
		return nil, fmt.Errorf("transform.fixed_volume_breaks: %w", err)
	}
	weightBreaks, err := floatSlice(v.GetStringSlice("transform.fixed_weight_breaks"))
	if err != nil {
		return nil, fmt.Errorf("transform.fixed_weight_breaks: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Extract: ExtractConfig{
			DataDir:        v.GetString("extract.data_dir"),
			CustomersFile:  v.GetString("extract.customers_file"),
			OrdersFile:     v.GetString("extract.orders_file"),
			OrderItemsFile: v.GetString("extract.order_items_file"),
			ProductsFile:   v.GetString("extract.products_file"),
			SellersFile:    v.GetString("extract.sellers_file"),
		},
		Transform: TransformConfig{
			ChunkSize:         v.GetInt("transform.chunk_size"),
			JoinMode:          warehouse.JoinMode(v.GetString("transform.join_mode")),
			QuantileMode:      warehouse.QuantileMode(v.GetString("transform.quantile_mode")),
			FixedVolumeBreaks: volumeBreaks,
			FixedWeightBreaks: weightBreaks,
			CitySizes:         v.GetStringMapString("transform.city_sizes"),
			StateRegions:      v.GetStringMapString("transform.state_regions"),
		},
		Segmentation: SegmentationConfig{
			VIPMinFrequency:     v.GetInt("segmentation.vip_min_frequency"),
			VIPMinSpent:         v.GetFloat64("segmentation.vip_min_spent"),
			LoyalMinFrequency:   v.GetInt("segmentation.loyal_min_frequency"),
			LoyalMinSpent:       v.GetFloat64("segmentation.loyal_min_spent"),
			RegularMinFrequency: v.GetInt("segmentation.regular_min_frequency"),
			RegularMinSpent:     v.GetFloat64("segmentation.regular_min_spent"),
			NewMaxRecencyDays:   v.GetInt("segmentation.new_max_recency_days"),
		},
		Basket: BasketConfig{
			MinSupport:            v.GetFloat64("basket.min_support"),
			MinConfidence:         v.GetFloat64("basket.min_confidence"),
			MaxCategoriesPerOrder: v.GetInt("basket.max_categories_per_order"),
		},
		Forecast: ForecastConfig{
			Horizon:     v.GetInt("forecast.horizon"),
			ShortWindow: v.GetInt("forecast.short_window"),
			LongWindow:  v.GetInt("forecast.long_window"),
			WeightShort: v.GetFloat64("forecast.weight_short"),
			WeightLong:  v.GetFloat64("forecast.weight_long"),
			WeightTrend: v.GetFloat64("forecast.weight_trend"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			TTL:     v.GetDuration("cache.ttl"),
		},
		Export: ExportConfig{
			Enabled: v.GetBool("export.enabled"),
			Dir:     v.GetString("export.dir"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "olap-engine"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ecommerce_olap"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Extract.DataDir == "" {
		cfg.Extract.DataDir = "./data"
	}
	if cfg.Extract.CustomersFile == "" {
		cfg.Extract.CustomersFile = "customers.csv"
	}
	if cfg.Extract.OrdersFile == "" {
		cfg.Extract.OrdersFile = "orders.csv"
	}
	if cfg.Extract.OrderItemsFile == "" {
		cfg.Extract.OrderItemsFile = "order_items.csv"
	}
	if cfg.Extract.ProductsFile == "" {
		cfg.Extract.ProductsFile = "products.csv"
	}
	if cfg.Extract.SellersFile == "" {
		cfg.Extract.SellersFile = "sellers.csv"
	}
	if cfg.Transform.ChunkSize == 0 {
		cfg.Transform.ChunkSize = 1000
	}
	if cfg.Transform.JoinMode == "" {
		cfg.Transform.JoinMode = warehouse.JoinModeLenient
	}
	if cfg.Transform.QuantileMode == "" {
		cfg.Transform.QuantileMode = warehouse.QuantileModeBatch
	}
	if len(cfg.Transform.CitySizes) == 0 {
		cfg.Transform.CitySizes = map[string]string{
			"sao paulo":      "Large",
			"rio de janeiro": "Large",
			"belo horizonte": "Large",
			"brasilia":       "Large",
			"curitiba":       "Medium",
			"campinas":       "Medium",
			"porto alegre":   "Medium",
			"salvador":       "Medium",
			"guarulhos":      "Medium",
		}
	}
	if len(cfg.Transform.StateRegions) == 0 {
		cfg.Transform.StateRegions = map[string]string{
			"sp": "Southeast", "rj": "Southeast", "mg": "Southeast", "es": "Southeast",
			"pr": "South", "sc": "South", "rs": "South",
			"ba": "Northeast", "pe": "Northeast", "ce": "Northeast",
			"df": "Center-West", "go": "Center-West", "mt": "Center-West", "ms": "Center-West",
		}
	}
	if cfg.Segmentation.VIPMinFrequency == 0 {
		cfg.Segmentation.VIPMinFrequency = 10
	}
	if cfg.Segmentation.VIPMinSpent == 0 {
		cfg.Segmentation.VIPMinSpent = 1000
	}
	if cfg.Segmentation.LoyalMinFrequency == 0 {
		cfg.Segmentation.LoyalMinFrequency = 5
	}
	if cfg.Segmentation.LoyalMinSpent == 0 {
		cfg.Segmentation.LoyalMinSpent = 500
	}
	if cfg.Segmentation.RegularMinFrequency == 0 {
		cfg.Segmentation.RegularMinFrequency = 2
	}
	if cfg.Segmentation.RegularMinSpent == 0 {
		cfg.Segmentation.RegularMinSpent = 200
	}
	if cfg.Segmentation.NewMaxRecencyDays == 0 {
		cfg.Segmentation.NewMaxRecencyDays = 90
	}
	if cfg.Basket.MinSupport == 0 {
		cfg.Basket.MinSupport = 0.01
	}
	if cfg.Basket.MinConfidence == 0 {
		cfg.Basket.MinConfidence = 0.1
	}
	if cfg.Basket.MaxCategoriesPerOrder == 0 {
		cfg.Basket.MaxCategoriesPerOrder = 50
	}
	if cfg.Forecast.Horizon == 0 {
		cfg.Forecast.Horizon = 30
	}
	if cfg.Forecast.ShortWindow == 0 {
		cfg.Forecast.ShortWindow = 7
	}
	if cfg.Forecast.LongWindow == 0 {
		cfg.Forecast.LongWindow = 30
	}
	if cfg.Forecast.WeightShort == 0 {
		cfg.Forecast.WeightShort = 0.5
	}
	if cfg.Forecast.WeightLong == 0 {
		cfg.Forecast.WeightLong = 0.3
	}
	if cfg.Forecast.WeightTrend == 0 {
		cfg.Forecast.WeightTrend = 0.2
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "./exports"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Transform.ChunkSize <= 0 {
		return fmt.Errorf("transform.chunk_size must be positive")
	}
	if !c.Transform.JoinMode.IsValid() {
		return fmt.Errorf("transform.join_mode must be %q or %q, got %q",
			warehouse.JoinModeLenient, warehouse.JoinModeStrict, c.Transform.JoinMode)
	}
	if !c.Transform.QuantileMode.IsValid() {
		return fmt.Errorf("transform.quantile_mode must be %q or %q, got %q",
			warehouse.QuantileModeBatch, warehouse.QuantileModeFixed, c.Transform.QuantileMode)
	}
	if c.Transform.QuantileMode == warehouse.QuantileModeFixed {
		if len(c.Transform.FixedVolumeBreaks) != 2 || len(c.Transform.FixedWeightBreaks) != 2 {
			return fmt.Errorf("fixed quantile mode requires exactly two volume and two weight breakpoints")
		}
	}

	if c.Basket.MinSupport < 0 || c.Basket.MinSupport > 1 {
		return fmt.Errorf("basket.min_support must be between 0.0 and 1.0, got %f", c.Basket.MinSupport)
	}
	if c.Basket.MinConfidence < 0 || c.Basket.MinConfidence > 1 {
		return fmt.Errorf("basket.min_confidence must be between 0.0 and 1.0, got %f", c.Basket.MinConfidence)
	}

	if c.Forecast.Horizon < 0 {
		return fmt.Errorf("forecast.horizon cannot be negative")
	}
	sum := c.Forecast.WeightShort + c.Forecast.WeightLong + c.Forecast.WeightTrend
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("forecast weights must sum to 1.0, got %f", sum)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// floatSlice parses string-encoded breakpoints into floats.
func floatSlice(values []string) ([]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]float64, len(values))
	for i, s := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
