package dbxdocs

import (
	"context"
	"time"
)

// CrawlMode controls which paths a crawl fetches.
type CrawlMode string

// Crawl modes.
const (
	// ModeIncremental fetches paths never stored or stored longer ago than
	// the freshness window.
	ModeIncremental CrawlMode = "incremental"

	// ModeNewOnly fetches only paths never stored.
	ModeNewOnly CrawlMode = "new-only"

	// ModeFull fetches every reachable path.
	ModeFull CrawlMode = "full"
)

// ParseCrawlMode converts a string to a CrawlMode. The empty string is
// ModeIncremental.
func ParseCrawlMode(s string) (CrawlMode, error) {
	switch CrawlMode(s) {
	case "", ModeIncremental:
		return ModeIncremental, nil
	case ModeNewOnly, ModeFull:
		return CrawlMode(s), nil
	}
	return "", Errorf(EINVALID, "unknown crawl mode %q", s)
}

// CrawlStatus is the outcome of a crawl run.
type CrawlStatus string

// Crawl run statuses.
const (
	CrawlRunning   CrawlStatus = "running"
	CrawlCompleted CrawlStatus = "completed"
	CrawlCapped    CrawlStatus = "capped"
	CrawlCanceled  CrawlStatus = "canceled"
	CrawlFailed    CrawlStatus = "failed"
)

// CrawlRun records one invocation of the crawler.
type CrawlRun struct {
	ID         string      `json:"id"`
	Mode       CrawlMode   `json:"mode"`
	Status     CrawlStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`

	Visited int `json:"visited"`
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Changed int `json:"changed"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Pruned  int `json:"pruned"`
}

// CrawlRunService persists crawl run history.
type CrawlRunService interface {
	// CreateCrawlRun stores a new run. ID and StartedAt are assigned when
	// empty.
	CreateCrawlRun(ctx context.Context, run *CrawlRun) error

	// UpdateCrawlRun replaces the stored run with the same ID.
	// Returns ENOTFOUND if the run does not exist.
	UpdateCrawlRun(ctx context.Context, run *CrawlRun) error

	// FindCrawlRuns returns the most recent runs first.
	FindCrawlRuns(ctx context.Context, limit int) ([]*CrawlRun, error)
}
