package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Options tune the pool. Zero values fall back to defaults.
type Options struct {
	MaxConns int32
	// Wait is how long Connect keeps retrying the first ping, e.g. while the
	// database container is still starting.
	Wait time.Duration
}

const retryEvery = time.Second

// Connect opens a pgx pool and pings it until it answers or opts.Wait runs out.
func Connect(ctx context.Context, dsn string, opts Options, log zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConns = 10
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}

	deadline := time.Now().Add(opts.Wait)
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if time.Now().After(deadline) {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("postgres not ready, retrying")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(retryEvery):
		}
	}
	pool.Close()
	return nil, fmt.Errorf("ping postgres: %w", err)
}
