package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/olist/olap-engine/internal/infrastructure/config"
)

// ResultCacheFactory creates result caches based on configuration
type ResultCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResultCacheFactoryOption is a functional option for configuring the factory
type ResultCacheFactoryOption func(*ResultCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResultCacheFactory creates a new factory
func NewResultCacheFactory(cfg config.RedisConfig, opts ...ResultCacheFactoryOption) *ResultCacheFactory {
	f := &ResultCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based result cache
func (f *ResultCacheFactory) CreateRedisCache() (ResultCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisResultCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis result cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory result cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share state across process instances,
// so each instance recomputes its own results
func (f *ResultCacheFactory) CreateInMemoryCache() ResultCache {
	return NewInMemoryResultCache()
}

// CreateCache creates a result cache based on whether Redis is available
// It tries Redis first and falls back to in-memory if Redis is not
// available and AllowInMemoryFallback is true
func (f *ResultCacheFactory) CreateCache() (ResultCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis result cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis unavailable and in-memory fallback disabled: %w", err)
	}

	f.logger.Warn("redis unavailable, falling back to in-memory result cache",
		zap.Error(err))
	return f.CreateInMemoryCache(), nil
}
