package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOptions tunes NewIdempotencyStore.
type StoreOptions struct {
	// RequireRedis turns a Redis connection failure into an error instead of
	// a fallback to the in-memory store.
	RequireRedis bool
	PingTimeout  time.Duration
	SweepEvery   time.Duration
}

// NewIdempotencyStore returns a Redis store when cfg.Host is set and
// reachable, and an in-memory store otherwise. The durable
// processed_webhook_events table stays authoritative either way.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts StoreOptions, log *zap.Logger) (shared.IdempotencyStore, error) {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = 5 * time.Minute
	}

	if cfg.Host == "" {
		if opts.RequireRedis {
			return nil, shared.NewConfigurationError("redis.host is required")
		}
		log.Info("redis not configured, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(opts.SweepEvery), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if opts.RequireRedis {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
		}
		log.Warn("redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(opts.SweepEvery), nil
	}

	log.Info("using redis idempotency store", zap.String("addr", cfg.Addr()))
	return NewRedisIdempotencyStore(client, ""), nil
}
