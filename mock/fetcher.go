package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var (
	_ dbxdocs.Fetcher     = (*Fetcher)(nil)
	_ dbxdocs.RateLimiter = (*RateLimiter)(nil)
)

// Fetcher is a mock implementation of dbxdocs.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// RateLimiter is a mock implementation of dbxdocs.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context) error
}

func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.WaitFn(ctx)
}
