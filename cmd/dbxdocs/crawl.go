package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/crawl"
	"github.com/fwojciec/dbxdocs/gemini"
	"github.com/fwojciec/dbxdocs/goquery"
	"github.com/fwojciec/dbxdocs/htmltomarkdown"
	dbxhttp "github.com/fwojciec/dbxdocs/http"
	"github.com/fwojciec/dbxdocs/readability"
	"github.com/fwojciec/dbxdocs/rod"
	dbxslog "github.com/fwojciec/dbxdocs/slog"
	"github.com/fwojciec/dbxdocs/trafilatura"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	crawler, closeFetcher, err := c.newCrawler(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	defer closeFetcher()

	opts := crawl.Options{
		Mode:       c.mode(),
		Limit:      c.Limit,
		Roots:      c.Root,
		SitemapURL: c.Sitemap,
		Prune:      !c.NoPrune,
	}
	fmt.Fprintf(deps.Stdout, "Crawling %s%s (%s)\n", deps.Site.BaseURL(), deps.Site.Root(), opts.Mode)

	result, err := crawler.Crawl(deps.Ctx, opts, c.progress(deps))
	if result != nil {
		printResult(deps, result, c.Tokens)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	return nil
}

func (c *CrawlCmd) mode() dbxdocs.CrawlMode {
	switch {
	case c.Full:
		return dbxdocs.ModeFull
	case c.NewOnly:
		return dbxdocs.ModeNewOnly
	}
	return dbxdocs.ModeIncremental
}

// newCrawler wires the crawl pipeline. The returned func releases the
// fetcher and must always be called.
func (c *CrawlCmd) newCrawler(deps *Dependencies) (*crawl.Crawler, func(), error) {
	limiter := crawl.NewLimiter(c.Rate)

	var extractor dbxdocs.Extractor = trafilatura.NewExtractor()
	if c.Extractor == "readability" {
		extractor = readability.NewExtractor()
	}

	fetcher, err := c.newFetcher(deps, limiter, extractor)
	if err != nil {
		return nil, func() {}, err
	}
	fetcher = dbxslog.NewLoggingFetcher(fetcher, deps.Logger)
	closeFetcher := func() {
		if err := fetcher.Close(); err != nil {
			deps.Logger.Warn("closing fetcher", "err", err)
		}
	}

	parser := goquery.NewParser(htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(deps.Site.BaseURL())), extractor)
	parser.Filter = deps.Site.Exclude()

	crawler := &crawl.Crawler{
		Site:        deps.Site,
		Documents:   deps.Documents,
		Index:       deps.Index,
		Fetcher:     fetcher,
		Parser:      parser,
		RateLimiter: limiter,
		Detector:    &crawl.ChangeDetector{FreshnessWindow: c.FreshFor, Now: time.Now},
		Runs:        deps.Runs,
		RetryDelays: retryDelays(c.Retries),
	}
	if c.Sitemap != "" {
		client := dbxhttp.NewRateLimitedClient(limiter, dbxhttp.DefaultFetchTimeout)
		crawler.Sitemaps = dbxslog.NewLoggingSitemapService(dbxhttp.NewSitemapService(client), deps.Logger)
	}
	if c.Tokens {
		tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
		if err != nil {
			closeFetcher()
			return nil, func() {}, err
		}
		crawler.TokenCounter = tc
	}
	return crawler, closeFetcher, nil
}

// newFetcher returns the static HTTP fetcher, a headless browser, or
// whichever of the two a probe of the first root prefers.
func (c *CrawlCmd) newFetcher(deps *Dependencies, limiter dbxdocs.RateLimiter, extractor dbxdocs.Extractor) (dbxdocs.Fetcher, error) {
	var static dbxdocs.Fetcher = dbxhttp.NewFetcher()
	if deps.Fetcher != nil {
		static = deps.Fetcher
	}

	switch c.Render {
	case "always":
		rendered, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed to use --render")
			return nil, err
		}
		return rendered, nil
	case "auto":
		rendered, err := rod.NewFetcher()
		if err != nil {
			deps.Logger.Warn("browser unavailable, using static fetcher", "err", err)
			return static, nil
		}
		probe := deps.Site.Root()
		if len(c.Root) > 0 {
			probe = c.Root[0]
		}
		chosen, useBrowser, err := crawl.ChooseFetcher(deps.Ctx, deps.Site.URL(probe), limiter, static, rendered, extractor)
		if err != nil {
			_ = rendered.Close()
			return nil, err
		}
		deps.Logger.Info("render probe", "url", deps.Site.URL(probe), "browser", useBrowser)
		if !useBrowser {
			_ = rendered.Close()
		}
		return chosen, nil
	}
	return static, nil
}

// retryDelays doubles from one second for each retry.
func retryDelays(n int) []time.Duration {
	if n <= 0 {
		return []time.Duration{}
	}
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Second << i
	}
	return delays
}

func (c *CrawlCmd) progress(deps *Dependencies) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  %d paths queued\n", event.Queued)
		case crawl.ProgressFetched:
			if event.Changed {
				fmt.Fprintf(deps.Stdout, "  updated %s\n", crawl.TruncatePath(event.Path, 70))
			}
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %s\n", event.Path, failure(event))
		case crawl.ProgressNotFound:
			fmt.Fprintf(deps.Stderr, "  gone %s\n", event.Path)
		case crawl.ProgressIndexFailed:
			fmt.Fprintf(deps.Stderr, "  not indexed %s: %s\n", event.Path, failure(event))
		case crawl.ProgressRetry:
			fmt.Fprintf(deps.Stderr, "  %s\n", event.Message)
		case crawl.ProgressPruned:
			fmt.Fprintf(deps.Stdout, "  pruned %s\n", event.Path)
		case crawl.ProgressRecordFailed:
			fmt.Fprintf(deps.Stderr, "warning: %s: %s\n", event.Message, dbxdocs.ErrorMessage(event.Error))
		}
	}
}

func failure(event crawl.ProgressEvent) string {
	if event.Error != nil {
		return dbxdocs.ErrorMessage(event.Error)
	}
	return event.Message
}

func printResult(deps *Dependencies, r *crawl.Result, tokens bool) {
	fmt.Fprintf(deps.Stdout, "Crawl %s: visited %d, fetched %d, skipped %d\n", r.Status, r.Visited, r.Fetched, r.Skipped)
	fmt.Fprintf(deps.Stdout, "  changed %d, unchanged %d, indexed %d", r.Changed, r.Unchanged, r.Indexed+r.Healed)
	if r.IndexFailed > 0 {
		fmt.Fprintf(deps.Stdout, ", index failed %d", r.IndexFailed)
	}
	fmt.Fprintln(deps.Stdout)
	fmt.Fprintf(deps.Stdout, "  failed %d, not found %d, pruned %d\n", r.Failed, r.NotFound, r.Pruned)
	if r.Bytes > 0 {
		size := crawl.FormatBytes(r.Bytes)
		if tokens {
			size += ", " + crawl.FormatTokens(r.Tokens)
		}
		fmt.Fprintf(deps.Stdout, "  %s of changed content\n", size)
	}
	if r.Status == dbxdocs.CrawlCapped {
		fmt.Fprintln(deps.Stdout, "Page limit reached. Run again to continue.")
	}
}
