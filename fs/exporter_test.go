package fs_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/fs"
	"github.com/fwojciec/dbxdocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticDocuments(docs ...*dbxdocs.Document) *mock.DocumentService {
	return &mock.DocumentService{
		FindDocumentsFn: func(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error) {
			if filter.Offset >= len(docs) {
				return nil, nil
			}
			end := min(filter.Offset+filter.Limit, len(docs))
			return docs[filter.Offset:end], nil
		},
	}
}

func TestDocumentFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/aws/en/compute", filepath.FromSlash("aws/en/compute.md")},
		{"/aws/en/compute/", filepath.FromSlash("aws/en/compute.md")},
		{"/", "index.md"},
		{"", "index.md"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := fs.DocumentFile(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects traversal", func(t *testing.T) {
		t.Parallel()

		_, err := fs.DocumentFile("/../../etc/passwd")
		assert.Equal(t, dbxdocs.EINVALID, dbxdocs.ErrorCode(err))
	})
}

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	out, err := fs.FormatDocument(&dbxdocs.Document{
		Path:       "/aws/en/compute",
		URL:        "https://docs.databricks.com/aws/en/compute",
		Title:      "Compute: overview",
		Content:    "# Compute\n\nBody.",
		Breadcrumb: []string{"Docs", "Compute"},
		Category:   "compute",
		FetchedAt:  time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Contains(t, out, "---\nsource: https://docs.databricks.com/aws/en/compute\n")
	assert.Contains(t, out, "Compute: overview")
	assert.Contains(t, out, "category: compute\n")
	assert.Contains(t, out, "- Docs\n")
	assert.Contains(t, out, "fetched: \"2025-02-03\"\n")
	assert.NotContains(t, out, "subcategory")
	assert.Contains(t, out, "---\n\n# Compute\n\nBody.")
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("writes every document", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		e := fs.NewExporter(staticDocuments(
			&dbxdocs.Document{Path: "/aws/en/compute", Title: "Compute", Content: "compute body"},
			&dbxdocs.Document{Path: "/aws/en/compute/clusters", Title: "Clusters", Content: "clusters body"},
		))

		n, err := e.Export(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		b, err := os.ReadFile(filepath.Join(dir, "aws", "en", "compute", "clusters.md"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "clusters body")
		assert.FileExists(t, filepath.Join(dir, "aws", "en", "compute.md"))
		assert.NoDirExists(t, dir+".tmp")
	})

	t.Run("reads the store in batches", func(t *testing.T) {
		t.Parallel()

		docs := make([]*dbxdocs.Document, 450)
		for i := range docs {
			docs[i] = &dbxdocs.Document{Path: fmt.Sprintf("/aws/en/page-%03d", i)}
		}
		calls := 0
		inner := staticDocuments(docs...)
		store := &mock.DocumentService{
			FindDocumentsFn: func(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error) {
				calls++
				assert.Equal(t, dbxdocs.SortByPath, filter.SortBy)
				return inner.FindDocuments(ctx, filter)
			},
		}

		n, err := fs.NewExporter(store).Export(context.Background(), filepath.Join(t.TempDir(), "out"))

		require.NoError(t, err)
		assert.Equal(t, 450, n)
		assert.Equal(t, 3, calls)
	})

	t.Run("replaces previous export", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.md"), []byte("old"), 0o644))

		_, err := fs.NewExporter(staticDocuments(&dbxdocs.Document{Path: "/a"})).Export(context.Background(), dir)

		require.NoError(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "stale.md"))
		assert.FileExists(t, filepath.Join(dir, "a.md"))
	})

	t.Run("failure keeps previous export", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "export")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.md"), []byte("old"), 0o644))
		store := &mock.DocumentService{
			FindDocumentsFn: func(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error) {
				return nil, errors.New("database is locked")
			},
		}

		_, err := fs.NewExporter(store).Export(context.Background(), dir)

		require.Error(t, err)
		assert.FileExists(t, filepath.Join(dir, "kept.md"))
		assert.NoDirExists(t, dir+".tmp")
	})
}
