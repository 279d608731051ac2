package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.CrawlRunService = (*CrawlRunService)(nil)

// CrawlRunService is a mock implementation of dbxdocs.CrawlRunService.
type CrawlRunService struct {
	CreateCrawlRunFn func(ctx context.Context, run *dbxdocs.CrawlRun) error
	UpdateCrawlRunFn func(ctx context.Context, run *dbxdocs.CrawlRun) error
	FindCrawlRunsFn  func(ctx context.Context, limit int) ([]*dbxdocs.CrawlRun, error)
}

func (s *CrawlRunService) CreateCrawlRun(ctx context.Context, run *dbxdocs.CrawlRun) error {
	return s.CreateCrawlRunFn(ctx, run)
}

func (s *CrawlRunService) UpdateCrawlRun(ctx context.Context, run *dbxdocs.CrawlRun) error {
	return s.UpdateCrawlRunFn(ctx, run)
}

func (s *CrawlRunService) FindCrawlRuns(ctx context.Context, limit int) ([]*dbxdocs.CrawlRun, error) {
	return s.FindCrawlRunsFn(ctx, limit)
}
