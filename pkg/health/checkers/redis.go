package checkers

import (
	"context"
	"errors"

	"github.com/artem13815/folio/pkg/cache"
)

var errNotConfigured = errors.New("not configured")

// RedisChecker reports the extraction cache. A cache running in bypass mode
// is healthy unless the checker is marked required.
type RedisChecker struct {
	cache    *cache.Redis
	required bool
}

func NewRedisChecker(c *cache.Redis, required bool) *RedisChecker {
	return &RedisChecker{cache: c, required: required}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	if c.required {
		return c.cache.Ping(ctx)
	}
	return c.cache.Check(ctx)
}
