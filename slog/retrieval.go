package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.RetrievalService = (*LoggingRetrievalService)(nil)

// LoggingRetrievalService wraps a RetrievalService with logging.
type LoggingRetrievalService struct {
	next   dbxdocs.RetrievalService
	logger *slog.Logger
}

// NewLoggingRetrievalService creates a new LoggingRetrievalService.
func NewLoggingRetrievalService(next dbxdocs.RetrievalService, logger *slog.Logger) *LoggingRetrievalService {
	return &LoggingRetrievalService{next: next, logger: logger}
}

// ListSections logs the request and the number of sections returned.
func (s *LoggingRetrievalService) ListSections(ctx context.Context, req dbxdocs.ListSectionsRequest) (list *dbxdocs.SectionList, err error) {
	defer func(begin time.Time) {
		n := 0
		if list != nil {
			n = len(list.Sections)
		}
		s.logger.Info("list sections",
			"category", req.Category,
			"query", req.SearchQuery,
			"limit", req.Limit,
			"sections", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListSections(ctx, req)
}

// GetDocumentation logs the requested and returned document counts.
func (s *LoggingRetrievalService) GetDocumentation(ctx context.Context, req dbxdocs.GetDocumentationRequest) (docs []*dbxdocs.DocumentationContent, err error) {
	defer func(begin time.Time) {
		s.logger.Info("get documentation",
			"requested", len(req.Paths),
			"returned", len(docs),
			"related", req.IncludeRelated,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.GetDocumentation(ctx, req)
}
