package http

import (
	"net/http"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// RateLimitedTransport waits on a shared limiter before every round trip,
// so redirects and sitemap index children are paced like page fetches.
type RateLimitedTransport struct {
	Limiter dbxdocs.RateLimiter
	Base    http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewRateLimitedClient returns a client whose every request waits on
// limiter.
func NewRateLimitedClient(limiter dbxdocs.RateLimiter, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &RateLimitedTransport{Limiter: limiter},
	}
}
