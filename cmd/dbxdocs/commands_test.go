package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/dbxdocs"
	main "github.com/fwojciec/dbxdocs/cmd/dbxdocs"
	"github.com/fwojciec/dbxdocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints sections with categories", func(t *testing.T) {
		t.Parallel()

		var got dbxdocs.ListSectionsRequest
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Retrieval: &mock.RetrievalService{
				ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
					got = req
					return &dbxdocs.SectionList{
						Sections: []*dbxdocs.SectionSummary{
							{Title: "Clusters", Path: "/aws/en/compute/clusters", Category: "compute", Subcategory: "clusters"},
						},
						TotalCount: 9,
						Categories: []string{"compute", "sql"},
					}, nil
				},
			},
		}

		err := (&main.SectionsCmd{Category: "compute", Limit: 1}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, dbxdocs.ListSectionsRequest{Category: "compute", Limit: 1}, got)
		out := stdout.String()
		assert.Contains(t, out, "Sections (1 of 9)")
		assert.Contains(t, out, "Clusters [compute/clusters]")
		assert.Contains(t, out, "/aws/en/compute/clusters")
		assert.Contains(t, out, "[compute sql]")
	})

	t.Run("empty corpus suggests crawling", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Retrieval: &mock.RetrievalService{
				ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
					return &dbxdocs.SectionList{}, nil
				},
			},
		}

		require.NoError(t, (&main.SectionsCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "dbxdocs crawl")
	})

	t.Run("reports invalid request", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Retrieval: &mock.RetrievalService{
				ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
					return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "limit must not be negative")
				},
			},
		}

		err := (&main.SectionsCmd{Limit: -1}).Run(deps)

		assert.Equal(t, dbxdocs.EINVALID, dbxdocs.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: limit must not be negative")
	})
}

func TestDocsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Retrieval: &mock.RetrievalService{
				GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
					return []*dbxdocs.DocumentationContent{{Path: "/aws/en/sql", Title: "SQL", Content: "# SQL", Breadcrumb: []string{}}}, nil
				},
			},
		}

		err := (&main.DocsCmd{Paths: []string{"/aws/en/sql"}, JSON: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `"path": "/aws/en/sql"`)
		assert.Contains(t, stdout.String(), `"content": "# SQL"`)
	})

	t.Run("passes related flag", func(t *testing.T) {
		t.Parallel()

		var got dbxdocs.GetDocumentationRequest
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Retrieval: &mock.RetrievalService{
				GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
					got = req
					return []*dbxdocs.DocumentationContent{{Path: "/a"}}, nil
				},
			},
		}

		require.NoError(t, (&main.DocsCmd{Paths: []string{"/a", "/b"}, Related: true}).Run(deps))
		assert.Equal(t, dbxdocs.GetDocumentationRequest{Paths: []string{"/a", "/b"}, IncludeRelated: true}, got)
	})
}

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	site, err := dbxdocs.NewSite("https://docs.databricks.com", "/aws/en/", nil)
	require.NoError(t, err)
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	stdout := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
		Site:   site,
		Documents: &mock.DocumentService{
			CountDocumentsFn: func(ctx context.Context, filter dbxdocs.DocumentFilter) (int, error) {
				if filter.Unindexed {
					return 2, nil
				}
				return 120, nil
			},
			FindCategoriesFn: func(ctx context.Context) ([]string, error) {
				return []string{"compute", "sql"}, nil
			},
		},
		Embeddings: &mock.EmbeddingService{
			CountEmbeddingsFn: func(ctx context.Context) (int, error) {
				return 118, nil
			},
		},
		Runs: &mock.CrawlRunService{
			FindCrawlRunsFn: func(ctx context.Context, limit int) ([]*dbxdocs.CrawlRun, error) {
				assert.Equal(t, 3, limit)
				return []*dbxdocs.CrawlRun{{
					Mode:       dbxdocs.ModeFull,
					Status:     dbxdocs.CrawlFailed,
					Error:      "database is locked",
					StartedAt:  started,
					FinishedAt: started.Add(90 * time.Second),
					Fetched:    40,
				}}, nil
			},
		},
	}

	require.NoError(t, (&main.StatusCmd{Runs: 3}).Run(deps))

	out := stdout.String()
	assert.Contains(t, out, "https://docs.databricks.com/aws/en")
	assert.Contains(t, out, "Documents:  120 (2 not indexed)")
	assert.Contains(t, out, "Embeddings: 118")
	assert.Contains(t, out, "Categories: 2")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "fetched 40")
	assert.Contains(t, out, "database is locked")
}
