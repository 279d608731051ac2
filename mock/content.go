package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var (
	_ dbxdocs.Extractor      = (*Extractor)(nil)
	_ dbxdocs.Converter      = (*Converter)(nil)
	_ dbxdocs.SitemapService = (*SitemapService)(nil)
	_ dbxdocs.TokenCounter   = (*TokenCounter)(nil)
)

// Extractor is a mock implementation of dbxdocs.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*dbxdocs.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*dbxdocs.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of dbxdocs.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

// SitemapService is a mock implementation of dbxdocs.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, location string, filter *dbxdocs.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, location string, filter *dbxdocs.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, location, filter)
}

// TokenCounter is a mock implementation of dbxdocs.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
