package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrUnavailable is returned by Ping when the cache is running in bypass mode.
var ErrUnavailable = errors.New("redis unavailable")

// Redis is a JSON cache. A Redis with a nil client bypasses every call, so
// callers never need to special-case a missing cache.
type Redis struct {
	client *redis.Client
	log    zerolog.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis connects to url (redis://...). An empty url or a failed ping
// yields a bypassing cache rather than an error.
func NewRedis(ctx context.Context, url string, log zerolog.Logger) *Redis {
	log = log.With().Str("component", "cache").Logger()
	if url == "" {
		log.Info().Msg("REDIS_URL not set, cache disabled")
		return &Redis{log: log}
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, cache disabled")
		return &Redis{log: log}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, bypassing cache")
		_ = client.Close()
		return &Redis{log: log}
	}
	return NewRedisWithClient(client, log)
}

func NewRedisWithClient(client *redis.Client, log zerolog.Logger) *Redis {
	return &Redis{client: client, log: log}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.Warn().Err(err).Msg("redis call failed, bypassing cache")
	}
}

// Name implements health.Checker.
func (r *Redis) Name() string { return "redis" }

// Check implements health.Checker. A disabled cache is reported healthy.
func (r *Redis) Check(ctx context.Context) error {
	if r.isUnavailable() {
		return nil
	}
	return r.Ping(ctx)
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

// GetJSON decodes the value under key into out and reports whether it was found.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}
