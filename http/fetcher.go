// Package http implements page fetching and sitemap discovery over plain
// HTTP. No JavaScript is executed; see package rod for rendered pages.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// DefaultFetchTimeout is the default timeout for one page request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies the indexer to the documentation site.
const DefaultUserAgent = "dbxdocs/1.0 (documentation indexer)"

// maxBodySize bounds how much of a response is read.
const maxBodySize = 16 << 20

var _ dbxdocs.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML over HTTP and classifies failures into error codes.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithClient uses c instead of a fresh client. The timeout option still
// applies.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	} else {
		c := *f.client
		f.client = &c
	}
	f.client.Timeout = f.timeout

	return f
}

// Fetch retrieves the HTML at url. Redirects are followed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := get(ctx, f.client, url, f.userAgent, "text/html,application/xhtml+xml")
	if err != nil {
		return "", err
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", dbxdocs.Errorf(dbxdocs.ENETWORK, "read %s: %v", url, err)
	}
	return string(b), nil
}

// Close is a no-op; http.Client holds nothing that needs releasing.
func (f *Fetcher) Close() error {
	return nil
}

// get issues a GET and returns the body of a 200 response. Failures are
// coded with StatusError or ENETWORK; context errors are returned as-is.
func get(ctx context.Context, client *http.Client, url, userAgent, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, dbxdocs.Errorf(dbxdocs.ENETWORK, "fetch %s: %v", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, StatusError(resp.StatusCode, url)
	}
	return resp.Body, nil
}

// StatusError maps a non-200 status to a coded error. Statuses worth
// retrying are ENETWORK; everything else means the page is not available
// and is ENOTFOUND.
func StatusError(status int, url string) error {
	msg := fmt.Sprintf("HTTP %d for %s", status, url)
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooEarly,
		status == http.StatusTooManyRequests,
		status >= 500:
		return dbxdocs.Errorf(dbxdocs.ENETWORK, "%s", msg)
	default:
		return dbxdocs.Errorf(dbxdocs.ENOTFOUND, "%s", msg)
	}
}
