package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_DisabledBypasses(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(ctx, "", zerolog.Nop())

	require.NoError(t, r.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))

	var out map[string]string
	found, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)
	assert.NoError(t, r.Check(ctx), "disabled cache must not fail readiness")
	assert.NoError(t, r.Close())
}

func TestRedis_InvalidURLBypasses(t *testing.T) {
	r := NewRedis(context.Background(), "::not a url::", zerolog.Nop())
	assert.True(t, r.isUnavailable())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	found, err := r.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, found)
}
