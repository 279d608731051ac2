package dbxdocs

import "context"

// Fetcher retrieves raw HTML for a URL.
//
// Implementations classify failures with error codes: ENOTFOUND when the
// page is gone, ENETWORK for transient failures worth retrying. Context
// errors are returned unchanged.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher, such as a browser.
	Close() error
}

// RateLimiter paces outbound requests. A single limiter is shared by every
// component that talks to the documentation site.
type RateLimiter interface {
	// Wait blocks until a request may be made or ctx is done.
	Wait(ctx context.Context) error
}
