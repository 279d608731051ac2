package sqlite_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putEmbedding(t testing.TB, svc *sqlite.EmbeddingService, path, category, model string, v ...float32) {
	t.Helper()
	err := svc.UpsertEmbedding(context.Background(), &dbxdocs.Embedding{
		Path:     path,
		Title:    "Title " + path,
		Category: category,
		Model:    model,
		Vector:   v,
	})
	require.NoError(t, err)
}

func TestEmbeddingService_UpsertEmbedding(t *testing.T) {
	t.Parallel()

	t.Run("round trips vector and metadata", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewEmbeddingService(setupTestDB(t))
		ctx := context.Background()

		e := &dbxdocs.Embedding{
			Path:        "/aws/en/compute",
			Title:       "Compute",
			Category:    "compute",
			Subcategory: "clusters",
			Model:       "test-model",
			Vector:      []float32{0.25, -1.5, 3},
			ContentHash: "00000000000000ff",
		}
		require.NoError(t, svc.UpsertEmbedding(ctx, e))

		found, err := svc.FindEmbeddingByPath(ctx, "/aws/en/compute")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.25, -1.5, 3}, found.Vector)
		assert.Equal(t, "Compute", found.Title)
		assert.Equal(t, "compute", found.Category)
		assert.Equal(t, "clusters", found.Subcategory)
		assert.Equal(t, "test-model", found.Model)
		assert.Equal(t, "00000000000000ff", found.ContentHash)
		assert.False(t, found.IndexedAt.IsZero())
	})

	t.Run("replaces entry at same path", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewEmbeddingService(setupTestDB(t))
		ctx := context.Background()

		putEmbedding(t, svc, "/a", "x", "m", 1, 0)
		putEmbedding(t, svc, "/a", "y", "m", 0, 1)

		n, err := svc.CountEmbeddings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		found, err := svc.FindEmbeddingByPath(ctx, "/a")
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1}, found.Vector)
		assert.Equal(t, "y", found.Category)
	})

	t.Run("rejects empty vector", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewEmbeddingService(setupTestDB(t))

		err := svc.UpsertEmbedding(context.Background(), &dbxdocs.Embedding{Path: "/a", Model: "m"})
		assert.Equal(t, dbxdocs.EINVALID, dbxdocs.ErrorCode(err))
	})
}

func TestEmbeddingService_FindEmbeddingByPath(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewEmbeddingService(setupTestDB(t))

	_, err := svc.FindEmbeddingByPath(context.Background(), "/missing")
	assert.Equal(t, dbxdocs.ENOTFOUND, dbxdocs.ErrorCode(err))
}

func TestEmbeddingService_SearchEmbeddings(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *sqlite.EmbeddingService {
		t.Helper()
		svc := sqlite.NewEmbeddingService(setupTestDB(t))
		putEmbedding(t, svc, "/exact", "sql", "m", 1, 0, 0)
		putEmbedding(t, svc, "/close", "compute", "m", 0.9, 0.1, 0)
		putEmbedding(t, svc, "/far", "sql", "m", 0, 1, 0)
		putEmbedding(t, svc, "/opposite", "sql", "m", -1, 0, 0)
		putEmbedding(t, svc, "/other-model", "sql", "old", 1, 0, 0)
		putEmbedding(t, svc, "/other-dims", "sql", "m", 1, 0)
		return svc
	}

	t.Run("ranks by descending similarity", func(t *testing.T) {
		t.Parallel()

		svc := seed(t)

		results, err := svc.SearchEmbeddings(context.Background(), []float32{1, 0, 0}, dbxdocs.SearchOptions{Model: "m", Limit: 10})
		require.NoError(t, err)

		var paths []string
		for i, r := range results {
			paths = append(paths, r.Path)
			if i > 0 {
				assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
			}
		}
		assert.Equal(t, []string{"/exact", "/close", "/far", "/opposite"}, paths)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.Equal(t, "Title /exact", results[0].Title)
	})

	t.Run("filters category before truncation", func(t *testing.T) {
		t.Parallel()

		svc := seed(t)

		results, err := svc.SearchEmbeddings(context.Background(), []float32{1, 0, 0}, dbxdocs.SearchOptions{
			Model:    "m",
			Category: "sql",
			Limit:    2,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "/exact", results[0].Path)
		assert.Equal(t, "/far", results[1].Path)
	})

	t.Run("excludes paths", func(t *testing.T) {
		t.Parallel()

		svc := seed(t)

		results, err := svc.SearchEmbeddings(context.Background(), []float32{1, 0, 0}, dbxdocs.SearchOptions{
			Model:   "m",
			Limit:   1,
			Exclude: []string{"/exact"},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "/close", results[0].Path)
	})

	t.Run("breaks ties by path", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewEmbeddingService(setupTestDB(t))
		putEmbedding(t, svc, "/b", "x", "m", 1, 0)
		putEmbedding(t, svc, "/a", "x", "m", 1, 0)

		results, err := svc.SearchEmbeddings(context.Background(), []float32{1, 0}, dbxdocs.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "/a", results[0].Path)
		assert.Equal(t, "/b", results[1].Path)
	})

	t.Run("rejects empty query vector", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewEmbeddingService(setupTestDB(t))

		_, err := svc.SearchEmbeddings(context.Background(), nil, dbxdocs.SearchOptions{})
		assert.Equal(t, dbxdocs.EINVALID, dbxdocs.ErrorCode(err))
	})
}

func TestEmbeddingService_DeleteAndPaths(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewEmbeddingService(setupTestDB(t))
	ctx := context.Background()

	putEmbedding(t, svc, "/b", "x", "m", 1)
	putEmbedding(t, svc, "/a", "x", "m", 1)
	putEmbedding(t, svc, "/c", "x", "old", 1)

	paths, err := svc.FindEmbeddingPaths(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, paths)

	all, err := svc.FindEmbeddingPaths(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c"}, all)

	require.NoError(t, svc.DeleteEmbedding(ctx, "/a"))
	require.NoError(t, svc.DeleteEmbedding(ctx, "/a"), "delete is idempotent")

	n, err := svc.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// BenchmarkSearchEmbeddings measures a full scan over a corpus-sized index.
func BenchmarkSearchEmbeddings(b *testing.B) {
	const docs, dims = 3500, 768

	db := sqlite.NewDB(":memory:")
	require.NoError(b, db.Open())
	defer db.Close()
	svc := sqlite.NewEmbeddingService(db)

	rng := rand.New(rand.NewSource(1))
	randomVector := func() []float32 {
		v := make([]float32, dims)
		for i := range v {
			v[i] = rng.Float32()*2 - 1
		}
		return v
	}
	for i := 0; i < docs; i++ {
		putEmbedding(b, svc, fmt.Sprintf("/doc/%d", i), "bench", "m", randomVector()...)
	}
	query := randomVector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := svc.SearchEmbeddings(context.Background(), query, dbxdocs.SearchOptions{Model: "m", Limit: 50})
		require.NoError(b, err)
	}
}
