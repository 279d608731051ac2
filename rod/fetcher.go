// Package rod implements a Fetcher that renders pages in headless Chrome,
// for documentation that only appears after client-side JavaScript runs.
package rod

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/dbxdocs"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page render.
const DefaultFetchTimeout = 45 * time.Second

var errClosed = dbxdocs.Errorf(dbxdocs.EINVALID, "fetcher is closed")

var _ dbxdocs.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	pool    *browserPool
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	timeout      time.Duration
	recycleAfter int64
}

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRecycleAfter sets how many pages a browser renders before it is
// replaced.
func WithRecycleAfter(n int64) Option {
	return func(o *options) {
		o.recycleAfter = n
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	o := options{timeout: DefaultFetchTimeout, recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(&o)
	}
	pool, err := newBrowserPool(o.recycleAfter)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EUNAVAILABLE, "browser: %v", err)
	}
	return &Fetcher{pool: pool, timeout: o.timeout}, nil
}

// Fetch navigates to url, waits for the page to load and returns the
// rendered DOM. The HTTP status of the main document is classified the
// same way as plain HTTP fetches.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.pool.acquire()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", dbxdocs.Errorf(dbxdocs.ENETWORK, "opening page: %v", err)
	}
	defer func() {
		_ = page.Close()
		f.pool.done()
	}()
	page = page.Context(ctx)

	status := 0
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(url); err != nil {
		return "", classify(ctx, url, err)
	}
	waitResponse()
	if err := statusError(status, url); err != nil {
		return "", err
	}

	if err := page.WaitLoad(); err != nil {
		return "", classify(ctx, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", classify(ctx, url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.pool.close()
}

// LauncherPID returns the browser launcher's process ID, or 0 once closed.
func (f *Fetcher) LauncherPID() int {
	return f.pool.pid()
}

// classify keeps context errors intact and reports everything else as a
// transient network failure.
func classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return dbxdocs.Errorf(dbxdocs.ENETWORK, "rendering %s: %v", url, err)
}

func statusError(status int, url string) error {
	switch {
	case status == 0, status < 400:
		return nil
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return dbxdocs.Errorf(dbxdocs.ENETWORK, "HTTP %d for %s", status, url)
	}
	return dbxdocs.Errorf(dbxdocs.ENOTFOUND, "HTTP %d for %s", status, url)
}
