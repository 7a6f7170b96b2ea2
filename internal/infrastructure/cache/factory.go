package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// StoreFactory creates collection stores based on configuration
type StoreFactory struct {
	redisConfig   RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:   cfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates a collection store for the requested backend. "redis"
// tries Redis first and falls back to memory when allowed; anything else
// (including empty) yields the in-memory store.
func (f *StoreFactory) CreateStore(backend string) (CollectionStore, error) {
	if backend != "redis" {
		return NewMemoryStore(), nil
	}

	store, err := NewRedisStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis collection cache")
		return store, nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("Redis required for collection cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory collection cache. "+
		"Instances will refresh the upstream catalog independently.",
		zap.Error(err),
	)
	return NewMemoryStore(), nil
}
