package crawl

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

// renderGain is how much longer rendered content must be before the
// browser is considered necessary.
const renderGain = 1.5

// ChooseFetcher decides between a static and a rendering fetcher by
// fetching probeURL with both. The rendering fetcher wins when the static
// fetch fails or when rendering yields substantially more content. The bool
// result reports whether the rendering fetcher was chosen. Each fetch waits
// on limiter when it is not nil; an error is returned only when a wait is
// cut short by ctx.
func ChooseFetcher(ctx context.Context, probeURL string, limiter dbxdocs.RateLimiter, static, rendered dbxdocs.Fetcher, extractor dbxdocs.Extractor) (dbxdocs.Fetcher, bool, error) {
	wait := func() error {
		if limiter == nil {
			return nil
		}
		return limiter.Wait(ctx)
	}

	if err := wait(); err != nil {
		return nil, false, err
	}
	staticHTML, err := static.Fetch(ctx, probeURL)
	if err != nil {
		return rendered, true, nil
	}
	if err := wait(); err != nil {
		return nil, false, err
	}
	renderedHTML, err := rendered.Fetch(ctx, probeURL)
	if err != nil {
		return static, false, nil
	}
	if ContentDiffers(staticHTML, renderedHTML, extractor) {
		return rendered, true, nil
	}
	return static, false, nil
}

// ContentDiffers reports whether the main content extracted from
// renderedHTML is substantially longer than that of staticHTML. Extraction
// failures count as a difference.
func ContentDiffers(staticHTML, renderedHTML string, extractor dbxdocs.Extractor) bool {
	s, err := extractor.Extract(staticHTML)
	if err != nil {
		return true
	}
	r, err := extractor.Extract(renderedHTML)
	if err != nil {
		return true
	}

	staticLen, renderedLen := len(s.ContentHTML), len(r.ContentHTML)
	if staticLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(staticLen)*renderGain
}
