package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name              string
		requestsPerSecond uint
		burst             uint
		unlimited         bool
	}{
		{"standard rate", 100, 200, false},
		{"low rate", 1, 2, false},
		{"zero burst", 5, 0, false},
		{"unlimited (zero rate)", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.requestsPerSecond, tt.burst)
			require.NotNil(t, limiter)
			assert.Equal(t, tt.unlimited, limiter.Unlimited())
			assert.True(t, limiter.Allow(), "first request must be admitted")
		})
	}
}

func TestAllow(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow(), "request %d should be allowed (within burst)", i)
	}
	assert.False(t, limiter.Allow(), "request should be rate-limited after burst exhausted")

	// 10 req/s refills one token every 100ms
	time.Sleep(110 * time.Millisecond)
	assert.True(t, limiter.Allow(), "request should be allowed after token replenishment")
}

func TestWait(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.LessOrEqual(t, elapsed, 300*time.Millisecond)
}

func TestWaitContextCancellation(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetLimit(t *testing.T) {
	limiter := New(1, 1)
	require.True(t, limiter.Allow())
	require.False(t, limiter.Allow())

	limiter.SetLimit(0)
	assert.True(t, limiter.Unlimited())
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow())
	}
}

func TestNilLimiter(t *testing.T) {
	var limiter *RateLimiter

	assert.True(t, limiter.Unlimited())
	assert.True(t, limiter.Allow())
	assert.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}

func TestUnlimitedRate(t *testing.T) {
	limiter := New(0, 0)
	for i := 0; i < 1000; i++ {
		require.True(t, limiter.Allow(), "unlimited limiter should allow request %d", i)
	}
}

func BenchmarkAllow(b *testing.B) {
	limiter := New(1_000_000, 1_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow()
	}
}
