package crawl

import (
	"time"

	"github.com/fwojciec/dbxdocs"
)

// DefaultFreshnessWindow is how long a stored page is considered fresh in
// incremental mode.
const DefaultFreshnessWindow = 7 * 24 * time.Hour

// ChangeDetector decides whether a page needs fetching and whether fetched
// content differs from what is stored. It is stateless apart from its
// configuration.
type ChangeDetector struct {
	// FreshnessWindow is the maximum age of a stored page before
	// incremental mode refetches it.
	FreshnessWindow time.Duration

	// Now returns the current time.
	Now func() time.Time
}

// NewChangeDetector returns a ChangeDetector with the default window.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{FreshnessWindow: DefaultFreshnessWindow, Now: time.Now}
}

// ShouldFetch reports whether a path last fetched at lastFetchedAt should be
// fetched in mode. The zero time means the path has never been stored.
func (d *ChangeDetector) ShouldFetch(lastFetchedAt time.Time, mode dbxdocs.CrawlMode) bool {
	if lastFetchedAt.IsZero() {
		return true
	}
	switch mode {
	case dbxdocs.ModeFull:
		return true
	case dbxdocs.ModeNewOnly:
		return false
	default:
		return d.Now().Sub(lastFetchedAt) > d.FreshnessWindow
	}
}

// HasChanged reports whether fetched differs from stored. A missing stored
// record always counts as a change.
func (d *ChangeDetector) HasChanged(stored, fetched *dbxdocs.Document) bool {
	if stored == nil {
		return true
	}
	return stored.ContentHash != fetched.ContentHash
}
