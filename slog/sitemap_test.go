package slog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/mock"
	dbxslog "github.com/fwojciec/dbxdocs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs discovery with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, location string, filter *dbxdocs.URLFilter) ([]string, error) {
				return []string{"https://docs.databricks.com/aws/en/a", "https://docs.databricks.com/aws/en/b"}, nil
			},
		}

		svc := dbxslog.NewLoggingSitemapService(inner, newLogger(&buf))
		urls, err := svc.DiscoverURLs(context.Background(), "https://docs.databricks.com/aws/en/", nil)

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		output := buf.String()
		assert.Contains(t, output, "sitemap discovery")
		assert.Contains(t, output, "location=https://docs.databricks.com/aws/en/")
		assert.Contains(t, output, "count=2")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, location string, filter *dbxdocs.URLFilter) ([]string, error) {
				return nil, errors.New("connection failed")
			},
		}

		svc := dbxslog.NewLoggingSitemapService(inner, newLogger(&buf))
		_, err := svc.DiscoverURLs(context.Background(), "https://docs.databricks.com", nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"connection failed\"")
	})
}
