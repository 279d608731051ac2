package crawl

import (
	"context"

	"github.com/fwojciec/dbxdocs"
	"golang.org/x/time/rate"
)

var _ dbxdocs.RateLimiter = (*Limiter)(nil)

// DefaultRate is the default number of requests per second to the
// documentation site.
const DefaultRate = 1.0

// Limiter is a process-wide token bucket shared by every component that
// sends requests to the documentation site. It is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter allowing rps requests per second with a
// burst of 1. A non-positive rps disables limiting.
func NewLimiter(rps float64) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &Limiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until a request may be made.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
