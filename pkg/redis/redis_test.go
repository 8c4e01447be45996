package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")
	cfg := VendorRateLimit("yahoo", 5)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)
	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestVendorRateLimit(t *testing.T) {
	cfg := VendorRateLimit("eodhd", 0)
	assert.Equal(t, "eodhd", cfg.Key)
	assert.Equal(t, 1, cfg.Limit)
	assert.Equal(t, time.Second, cfg.Window)
}

func TestCacheKeys(t *testing.T) {
	from := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"DailyBarsKey", DailyBarsKey("yahoo", "aapl", from, to), "bars:yahoo:1d:AAPL:2024-01-13:2024-01-16"},
		{"SymbolKey", SymbolKey("eodhd", "msft"), "symbol:eodhd:MSFT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
