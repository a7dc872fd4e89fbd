// Package cache provides a byte-oriented key/value cache backed by Redis,
// with a no-op implementation when caching is disabled.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/cadence/pkg/lifecycle"
)

// ErrMiss indicates the key is not cached.
var ErrMiss = errors.New("cache miss")

// System manages cached values and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Get returns the cached value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A non-positive ttl uses the configured default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New creates a cache system from the given configuration.
// A disabled configuration returns a no-op System.
func New(cfg *Config, logger *slog.Logger) System {
	if !cfg.Enabled {
		return Noop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &redisCache{
		client:     client,
		prefix:     cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTLDuration(),
		logger:     logger.With("system", "cache"),
	}
}

type redisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache system")

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
		defer cancel()

		if err := c.client.Ping(pingCtx).Err(); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return
		}

		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("closing cache connection")

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}

		c.logger.Info("cache connection closed")
	})

	return nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

type noop struct{}

// Noop returns a System that never stores anything.
func Noop() System {
	return noop{}
}

func (noop) Start(*lifecycle.Coordinator) error { return nil }

func (noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (noop) Delete(context.Context, string) error { return nil }
