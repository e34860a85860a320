package ratelimit

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	rl := New(Config{QueriesPerSecond: 10, BurstSize: 5})
	ip := net.ParseIP("203.0.113.5")

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(ip), "query %d should be admitted within burst", i)
	}
	assert.False(t, rl.Allow(ip), "query beyond burst should be rejected")
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	rl := New(Config{QueriesPerSecond: 1, BurstSize: 1})
	a := net.ParseIP("203.0.113.1")
	b := net.ParseIP("203.0.113.2")

	assert.True(t, rl.Allow(a))
	assert.False(t, rl.Allow(a))
	assert.True(t, rl.Allow(b), "a different client must not be throttled by a's usage")
}

func TestLimiterExemptNetBypassesLimit(t *testing.T) {
	rl := New(Config{QueriesPerSecond: 1, BurstSize: 1})
	require.NoError(t, rl.AddExempt("203.0.113.0/24"))

	ip := net.ParseIP("203.0.113.9")
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow(ip))
	}
}

func TestLimiterAllowStringAdmitsUnparseableAddress(t *testing.T) {
	rl := New(DefaultConfig())
	assert.True(t, rl.AllowString("not-an-ip"))
}
