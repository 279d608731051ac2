package index_test

import (
	"context"
	"math"
	"testing"

	"github.com/fwojciec/dbxdocs/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	t.Parallel()

	t.Run("model names dimensions", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hash-v1-128", index.NewHashEmbedder(128).Model())
		assert.Equal(t, "hash-v1-512", index.NewHashEmbedder(0).Model())
	})

	t.Run("vectors are unit length and deterministic", func(t *testing.T) {
		t.Parallel()

		e := index.NewHashEmbedder(64)
		ctx := context.Background()

		a, err := e.EmbedQuery(ctx, "Delta Lake time travel")
		require.NoError(t, err)
		b, err := e.EmbedQuery(ctx, "delta lake TIME travel")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		var norm float64
		for _, x := range a {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	})

	t.Run("text without tokens yields zero vector", func(t *testing.T) {
		t.Parallel()

		v, err := index.NewHashEmbedder(16).EmbedQuery(context.Background(), "!!! ---")
		require.NoError(t, err)
		assert.Equal(t, make([]float32, 16), v)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := index.NewHashEmbedder(16).EmbedDocument(ctx, "t", "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
