package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	now := time.Now()
	require.NoError(t, c.Set(ctx, &core.CacheEntry{
		Key:        "k",
		Assessment: core.ContextAssessment{RiskScore: 0.7, Flags: []string{"lure"}},
		LastSeen:   now,
		ExpiresAt:  now.Add(time.Minute),
	}))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0.7, got.Assessment.RiskScore)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "old", ExpiresAt: past}))
	require.NoError(t, c.Set(ctx, &core.CacheEntry{Key: "new", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheStopTwice(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}
