package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/config"
)

// NewRedisClient connects the lookup cache and pings it once. The caller
// decides whether a failure is fatal; the server carries on without a cache.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("pool_size", opt.PoolSize).
		Dur("timeout", opt.ReadTimeout).
		Dur("ttl", cfg.CacheTTL).
		Msg("Redis connected")

	return rdb, nil
}

// clientOptions parses REDIS_URL and applies the cache timeouts and pool size.
// Values given in the URL query win over the environment.
func clientOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is empty")
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if opt.ClientName == "" {
		opt.ClientName = "university-api"
	}
	if cfg.CacheTimeout > 0 {
		if opt.DialTimeout == 0 {
			opt.DialTimeout = cfg.CacheTimeout
		}
		if opt.ReadTimeout == 0 {
			opt.ReadTimeout = cfg.CacheTimeout
		}
		if opt.WriteTimeout == 0 {
			opt.WriteTimeout = cfg.CacheTimeout
		}
	}
	if cfg.CachePoolSize > 0 && opt.PoolSize == 0 {
		opt.PoolSize = cfg.CachePoolSize
	}

	return opt, nil
}
