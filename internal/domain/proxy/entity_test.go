//go:build unit

package proxy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayproxy/internal/domain/proxy"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newProxy(t *testing.T, maxUsage int32, expiresAt time.Time) *proxy.Proxy {
	t.Helper()
	p, err := proxy.NewProxy("10.0.0.1", 8080, "px", "secret", "kenya", "KE", maxUsage, expiresAt, now)
	require.NoError(t, err)
	return p
}

func TestNewProxy(t *testing.T) {
	t.Run("valid proxy starts active and available", func(t *testing.T) {
		p := newProxy(t, 3, now.Add(24*time.Hour))
		assert.True(t, p.IsActive())
		assert.Equal(t, proxy.StatusAvailable, p.Status())
		assert.True(t, p.HasCapacity())
		assert.True(t, p.CanServe(now))
		assert.Equal(t, now, p.CreatedAt())
	})

	t.Run("expiry at or before now is created expired", func(t *testing.T) {
		p := newProxy(t, 3, now)
		assert.Equal(t, proxy.StatusExpired, p.Status())
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name     string
			ip       string
			port     int
			maxUsage int32
			errIs    error
		}{
			{name: "missing ip", ip: "", port: 8080, maxUsage: 3, errIs: proxy.ErrInvalidEndpoint},
			{name: "zero port", ip: "10.0.0.1", port: 0, maxUsage: 3, errIs: proxy.ErrInvalidEndpoint},
			{name: "port out of range", ip: "10.0.0.1", port: 70000, maxUsage: 3, errIs: proxy.ErrInvalidEndpoint},
			{name: "zero capacity", ip: "10.0.0.1", port: 8080, maxUsage: 0, errIs: proxy.ErrInvalidCapacity},
			{name: "negative capacity", ip: "10.0.0.1", port: 8080, maxUsage: -1, errIs: proxy.ErrInvalidCapacity},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := proxy.NewProxy(tc.ip, tc.port, "px", "secret", "kenya", "KE", tc.maxUsage, now.Add(time.Hour), now)
				assert.ErrorIs(t, err, tc.errIs)
			})
		}
	})
}

func TestProxyFreshness(t *testing.T) {
	window := 6 * time.Hour

	cases := []struct {
		name      string
		expiresAt time.Time
		fresh     bool
	}{
		{name: "well past the window", expiresAt: now.Add(10 * time.Hour), fresh: true},
		{name: "exactly at the window boundary", expiresAt: now.Add(window), fresh: false},
		{name: "inside the window", expiresAt: now.Add(2 * time.Hour), fresh: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newProxy(t, 3, tc.expiresAt)
			assert.Equal(t, tc.fresh, p.IsFresh(now, window))
		})
	}
}

func TestProxyCapacity(t *testing.T) {
	t.Run("reconstructed at the cap is exhausted", func(t *testing.T) {
		p := proxy.Reconstruct(newProxy(t, 2, now.Add(time.Hour)).ID(),
			"10.0.0.1", 8080, "px", "secret", "kenya", "KE",
			2, 2, now.Add(time.Hour), true, proxy.StatusAvailable, now)
		assert.True(t, p.IsExhausted())
		assert.False(t, p.HasCapacity())
		assert.False(t, p.CanServe(now))
	})

	t.Run("expired unit cannot serve even with capacity", func(t *testing.T) {
		p := proxy.Reconstruct(newProxy(t, 2, now.Add(time.Hour)).ID(),
			"10.0.0.1", 8080, "px", "secret", "kenya", "KE",
			2, 0, now.Add(-time.Minute), true, proxy.StatusAvailable, now)
		assert.True(t, p.HasExpired(now))
		assert.False(t, p.CanServe(now))
	})
}
