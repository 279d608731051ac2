package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements dbxdocs.RateLimiter", func(t *testing.T) {
		t.Parallel()
		var _ dbxdocs.RateLimiter = crawl.NewLimiter(1)
	})

	t.Run("first request is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(10)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("paces consecutive requests", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(10)
		require.NoError(t, limiter.Wait(context.Background()))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(0)

		start := time.Now()
		for i := 0; i < 100; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("returns error when context is cancelled while waiting", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(0.1)
		require.NoError(t, limiter.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx))
	})
}
