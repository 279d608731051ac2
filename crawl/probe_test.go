package crawl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/crawl"
	"github.com/fwojciec/dbxdocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthExtractor returns the input as content so tests control lengths
// through the fetched HTML.
var lengthExtractor = &mock.Extractor{
	ExtractFn: func(html string) (*dbxdocs.ExtractResult, error) {
		if html == "broken" {
			return nil, errors.New("cannot parse")
		}
		return &dbxdocs.ExtractResult{ContentHTML: html}, nil
	},
}

func staticFetcher(html string, err error) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) { return html, err },
	}
}

func TestContentDiffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		static   string
		rendered string
		want     bool
	}{
		{"rendered much longer", strings.Repeat("a", 100), strings.Repeat("a", 151), true},
		{"similar length", strings.Repeat("a", 100), strings.Repeat("a", 110), false},
		{"exactly half again", strings.Repeat("a", 100), strings.Repeat("a", 150), false},
		{"static empty", "", "content", true},
		{"both empty", "", "", false},
		{"static extraction fails", "broken", "content", true},
		{"rendered extraction fails", "content", "broken", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, crawl.ContentDiffers(tt.static, tt.rendered, lengthExtractor))
		})
	}
}

func TestChooseFetcher(t *testing.T) {
	t.Parallel()

	t.Run("prefers static fetcher when rendering adds nothing", func(t *testing.T) {
		t.Parallel()

		static := staticFetcher("same content", nil)
		rendered := staticFetcher("same content", nil)

		f, usesBrowser, err := crawl.ChooseFetcher(context.Background(), "https://docs.example.com/aws/en", nil, static, rendered, lengthExtractor)

		require.NoError(t, err)
		assert.Same(t, static, f)
		assert.False(t, usesBrowser)
	})

	t.Run("uses rendering fetcher when it yields more content", func(t *testing.T) {
		t.Parallel()

		static := staticFetcher("shell", nil)
		rendered := staticFetcher(strings.Repeat("rendered ", 20), nil)

		f, usesBrowser, err := crawl.ChooseFetcher(context.Background(), "https://docs.example.com/aws/en", nil, static, rendered, lengthExtractor)

		require.NoError(t, err)
		assert.Same(t, rendered, f)
		assert.True(t, usesBrowser)
	})

	t.Run("falls back to rendering fetcher when static fetch fails", func(t *testing.T) {
		t.Parallel()

		static := staticFetcher("", dbxdocs.Errorf(dbxdocs.ENETWORK, "HTTP 503"))
		rendered := staticFetcher("content", nil)

		f, usesBrowser, err := crawl.ChooseFetcher(context.Background(), "https://docs.example.com/aws/en", nil, static, rendered, lengthExtractor)

		require.NoError(t, err)
		assert.Same(t, rendered, f)
		assert.True(t, usesBrowser)
	})

	t.Run("keeps static fetcher when browser fails", func(t *testing.T) {
		t.Parallel()

		static := staticFetcher("content", nil)
		rendered := staticFetcher("", errors.New("chrome not found"))

		f, usesBrowser, err := crawl.ChooseFetcher(context.Background(), "https://docs.example.com/aws/en", nil, static, rendered, lengthExtractor)

		require.NoError(t, err)
		assert.Same(t, static, f)
		assert.False(t, usesBrowser)
	})

	t.Run("waits on the limiter before each fetch", func(t *testing.T) {
		t.Parallel()

		var order []string
		limiter := &mock.RateLimiter{
			WaitFn: func(_ context.Context) error {
				order = append(order, "wait")
				return nil
			},
		}
		fetcher := func(name string) *mock.Fetcher {
			return &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) {
					order = append(order, name)
					return "content", nil
				},
			}
		}

		_, _, err := crawl.ChooseFetcher(context.Background(), "https://docs.example.com/aws/en", limiter, fetcher("static"), fetcher("rendered"), lengthExtractor)

		require.NoError(t, err)
		assert.Equal(t, []string{"wait", "static", "wait", "rendered"}, order)
	})

	t.Run("returns limiter error without fetching", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetched := false
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				fetched = true
				return "content", nil
			},
		}

		_, _, err := crawl.ChooseFetcher(ctx, "https://docs.example.com/aws/en", crawl.NewLimiter(1), fetcher, fetcher, lengthExtractor)

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, fetched)
	})
}
