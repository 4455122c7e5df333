package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/folio/pkg/cache"
	"github.com/artem13815/folio/pkg/health"
	"github.com/artem13815/folio/pkg/health/checkers"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReady_AllOK(t *testing.T) {
	pg := checkers.NewPostgresChecker(pingFunc(func(context.Context) error { return nil }))
	redis := checkers.NewRedisChecker(cache.NewRedis(context.Background(), "", zerolog.Nop()), false)

	rep, err := health.NewService(time.Second, pg, redis).Ready(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Ready)
	assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, rep.Checks)
}

func TestReady_ReportsEveryFailure(t *testing.T) {
	pg := checkers.NewPostgresChecker(pingFunc(func(context.Context) error { return errors.New("refused") }))
	redis := checkers.NewRedisChecker(cache.NewRedis(context.Background(), "", zerolog.Nop()), true)

	rep, err := health.NewService(time.Second, pg, redis).Ready(context.Background())
	assert.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrUnavailable)
	assert.False(t, rep.Ready)
	assert.Equal(t, "refused", rep.Checks["postgres"])
	assert.Equal(t, cache.ErrUnavailable.Error(), rep.Checks["redis"])
}

func TestReady_CheckerTimeout(t *testing.T) {
	slow := checkers.NewPostgresChecker(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	_, err := health.NewService(10*time.Millisecond, slow).Ready(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostgresChecker_Nil(t *testing.T) {
	assert.Error(t, checkers.NewPostgresChecker(nil).Check(context.Background()))
}
