// Package slog provides logging decorators for the dbxdocs service
// interfaces, built on log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   dbxdocs.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next dbxdocs.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL, size and outcome of each fetch at debug level.
// Failures are logged at warn level with their error code.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			f.logger.Warn("fetch",
				"url", url,
				"code", dbxdocs.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
