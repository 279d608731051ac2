// Package crawl provides documentation crawling orchestration.
// It walks the site breadth-first from its roots, fetches pages the change
// detector selects, stores them, and keeps the vector index in step.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// Crawler orchestrates crawling of the documentation site. It is the only
// writer to the content store and the vector index. A Crawler runs one
// crawl at a time.
type Crawler struct {
	Site        *dbxdocs.Site
	Documents   dbxdocs.DocumentService
	Index       dbxdocs.Indexer
	Fetcher     dbxdocs.Fetcher
	Parser      dbxdocs.PageParser
	RateLimiter dbxdocs.RateLimiter
	Detector    *ChangeDetector

	// Sitemaps, when set, seeds the frontier from Options.SitemapURL.
	Sitemaps dbxdocs.SitemapService

	// Runs, when set, records crawl run history.
	Runs dbxdocs.CrawlRunService

	// TokenCounter, when set, counts tokens of changed content.
	TokenCounter dbxdocs.TokenCounter

	RetryDelays []time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Options configures a single crawl.
type Options struct {
	Mode dbxdocs.CrawlMode

	// Limit caps the number of pages fetched. Zero means no cap.
	Limit int

	// Roots are the paths the traversal starts from. Defaults to the site
	// scope root.
	Roots []string

	// SitemapURL, when set, adds every in-scope page listed by the sitemap
	// to the initial frontier.
	SitemapURL string

	// Prune deletes stored documents that were not reached, but only when
	// the run completed without cap, cancellation, or network failures, and
	// covered the whole scope: a root is the scope root or the sitemap
	// seeded the frontier.
	Prune bool
}

// Result holds the outcome of a crawl operation.
type Result struct {
	Visited     int
	Fetched     int
	Skipped     int
	Changed     int
	Unchanged   int
	Indexed     int
	IndexFailed int
	Healed      int
	Orphans     int
	Failed      int
	NotFound    int
	Pruned      int
	Bytes       int
	Tokens      int

	Status dbxdocs.CrawlStatus
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type    ProgressType
	Path    string
	Visited int
	Queued  int
	Changed bool
	Error   error
	Message string
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressSkipped
	ProgressFetched
	ProgressFailed
	ProgressNotFound
	ProgressIndexFailed
	ProgressRetry
	ProgressHealed
	ProgressPruned
	ProgressFinished
	ProgressRecordFailed
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl runs one crawl. It returns the counters gathered so far together
// with any error. An EUNAVAILABLE error means a store failed and the run was
// aborted; a context error means it was cancelled between pages. Pages
// completed before either remain stored and indexed.
func (c *Crawler) Crawl(ctx context.Context, opts Options, progress ProgressFunc) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	mode, err := dbxdocs.ParseCrawlMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "limit must not be negative")
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	r := &run{Crawler: c, ctx: ctx, opts: opts, mode: mode, progress: progress,
		result: &Result{Status: dbxdocs.CrawlRunning}, reached: make(map[string]bool)}

	if err := r.begin(); err != nil {
		return nil, err
	}
	err = r.execute()
	r.finish(err)
	return r.result, err
}

func (c *Crawler) validate() error {
	switch {
	case c.Site == nil:
		return dbxdocs.Errorf(dbxdocs.EINVALID, "crawler site required")
	case c.Documents == nil:
		return dbxdocs.Errorf(dbxdocs.EINVALID, "crawler document service required")
	case c.Index == nil:
		return dbxdocs.Errorf(dbxdocs.EINVALID, "crawler indexer required")
	case c.Fetcher == nil:
		return dbxdocs.Errorf(dbxdocs.EINVALID, "crawler fetcher required")
	case c.Parser == nil:
		return dbxdocs.Errorf(dbxdocs.EINVALID, "crawler parser required")
	}
	return nil
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Crawler) detector() *ChangeDetector {
	if c.Detector != nil {
		return c.Detector
	}
	return &ChangeDetector{FreshnessWindow: DefaultFreshnessWindow, Now: c.now}
}

// run holds the state of one crawl.
type run struct {
	*Crawler
	ctx      context.Context
	opts     Options
	mode     dbxdocs.CrawlMode
	progress ProgressFunc
	result   *Result
	record   *dbxdocs.CrawlRun

	frontier *Frontier
	reached  map[string]bool

	// incomplete is set when reachability may be understated, which
	// disables pruning.
	incomplete bool

	// partial is set when the run starts below the scope root without a
	// sitemap, so unreached pages say nothing about the rest of the corpus.
	partial bool
}

func (r *run) begin() error {
	if r.Runs == nil {
		return nil
	}
	r.record = &dbxdocs.CrawlRun{Mode: r.mode, StartedAt: r.now()}
	if err := r.Runs.CreateCrawlRun(r.ctx, r.record); err != nil {
		return unavailable("record crawl run", err)
	}
	return nil
}

func (r *run) finish(err error) {
	res := r.result
	switch {
	case err == nil && res.Status == dbxdocs.CrawlRunning:
		res.Status = dbxdocs.CrawlCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Status = dbxdocs.CrawlCanceled
	case err != nil:
		res.Status = dbxdocs.CrawlFailed
	}

	r.saveRecord(err)
	r.progress(ProgressEvent{Type: ProgressFinished, Visited: res.Visited, Error: err})
}

// saveRecord stores the final counters in the run history. A failure is
// reported but does not change the outcome of the crawl.
func (r *run) saveRecord(err error) {
	if r.record == nil {
		return
	}
	res := r.result
	rec := r.record
	rec.Status = res.Status
	rec.FinishedAt = r.now()
	rec.Visited, rec.Fetched, rec.Skipped = res.Visited, res.Fetched, res.Skipped
	rec.Changed, rec.Indexed, rec.Failed, rec.Pruned = res.Changed, res.Indexed+res.Healed, res.Failed, res.Pruned
	if err != nil {
		rec.Error = err.Error()
	}
	// The run may have been cancelled; history is still worth keeping.
	if uerr := r.Runs.UpdateCrawlRun(context.WithoutCancel(r.ctx), rec); uerr != nil {
		r.progress(ProgressEvent{Type: ProgressRecordFailed, Error: uerr, Message: "crawl history not saved"})
	}
}

func (r *run) execute() error {
	if err := r.reconcile(); err != nil {
		return err
	}
	if err := r.seed(); err != nil {
		return err
	}
	if err := r.walk(); err != nil {
		return err
	}
	if r.result.Status == dbxdocs.CrawlCapped {
		return nil
	}
	return r.prune()
}

// reconcile indexes stored documents whose current content has no vector
// and removes vectors whose document is gone. It repairs the window between
// storing a page and indexing it left by an earlier failed or interrupted
// run.
func (r *run) reconcile() error {
	paths, err := r.Documents.FindDocumentPaths(r.ctx)
	if err != nil {
		return r.storeErr("list documents", err)
	}
	stored := make(map[string]bool, len(paths))
	for _, p := range paths {
		stored[p] = true
	}

	indexedPaths, err := r.Index.Paths(r.ctx)
	if err != nil {
		return r.storeErr("list index", err)
	}
	indexed := make(map[string]bool, len(indexedPaths))
	for _, p := range indexedPaths {
		indexed[p] = true
		if stored[p] {
			continue
		}
		if err := r.Index.Remove(r.ctx, p); err != nil {
			return r.storeErr("remove orphan "+p, err)
		}
		r.result.Orphans++
	}

	unindexed, err := r.Documents.FindDocuments(r.ctx, dbxdocs.DocumentFilter{Unindexed: true, SortBy: dbxdocs.SortByPath})
	if err != nil {
		return r.storeErr("list unindexed documents", err)
	}
	pending := make(map[string]bool, len(unindexed))
	for _, doc := range unindexed {
		pending[doc.Path] = true
	}
	for _, p := range paths {
		if !indexed[p] && !pending[p] {
			doc, err := r.Documents.FindDocumentByPath(r.ctx, p)
			if err != nil {
				return r.storeErr("load "+p, err)
			}
			if doc.Content != "" {
				unindexed = append(unindexed, doc)
			}
		}
	}

	for _, doc := range unindexed {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		err := r.index(doc)
		switch {
		case err == nil:
			r.result.Healed++
			r.progress(ProgressEvent{Type: ProgressHealed, Path: doc.Path})
		case dbxdocs.ErrorCode(err) == dbxdocs.EEMBEDDING:
			r.result.IndexFailed++
			r.progress(ProgressEvent{Type: ProgressIndexFailed, Path: doc.Path, Error: err})
		default:
			return err
		}
	}
	return nil
}

func (r *run) seed() error {
	r.frontier = NewFrontier()

	roots := r.opts.Roots
	if len(roots) == 0 {
		roots = []string{r.Site.Root()}
	}
	r.partial = true
	for _, root := range roots {
		p, ok := r.Site.Path(root)
		if !ok {
			return dbxdocs.Errorf(dbxdocs.EINVALID, "root %q is outside the site scope", root)
		}
		if p == r.Site.Root() {
			r.partial = false
		}
		r.frontier.Push(p)
	}

	if r.opts.SitemapURL != "" && r.Sitemaps != nil {
		if err := r.seedSitemap(); err != nil {
			return err
		}
	}
	r.progress(ProgressEvent{Type: ProgressStarted, Queued: r.frontier.Len()})
	return nil
}

func (r *run) seedSitemap() error {
	urls, err := r.Sitemaps.DiscoverURLs(r.ctx, r.opts.SitemapURL, nil)
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.incomplete = true
		r.progress(ProgressEvent{Type: ProgressFailed, Path: r.opts.SitemapURL, Error: err, Message: "sitemap"})
		return nil
	}
	seeded := 0
	for _, u := range urls {
		if p, ok := r.Site.Path(u); ok {
			r.frontier.Push(p)
			seeded++
		}
	}
	if seeded > 0 {
		r.partial = false
	}
	return nil
}

func (r *run) walk() error {
	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		path, ok := r.frontier.Pop()
		if !ok {
			return nil
		}

		stored, err := r.Documents.FindDocumentByPath(r.ctx, path)
		if err != nil && dbxdocs.ErrorCode(err) != dbxdocs.ENOTFOUND {
			return r.storeErr("load "+path, err)
		}
		var last time.Time
		if stored != nil {
			last = stored.FetchedAt
		}

		if !r.detector().ShouldFetch(last, r.mode) {
			r.result.Visited++
			r.result.Skipped++
			r.reached[path] = true
			r.enqueue(path, stored.RelatedPaths)
			r.progress(ProgressEvent{Type: ProgressSkipped, Path: path, Visited: r.result.Visited, Queued: r.frontier.Len()})
			continue
		}

		if r.opts.Limit > 0 && r.result.Fetched >= r.opts.Limit {
			r.result.Status = dbxdocs.CrawlCapped
			return nil
		}

		r.result.Visited++
		r.result.Fetched++
		if err := r.visit(path, stored); err != nil {
			return err
		}
	}
}

// visit fetches, stores and indexes one page. Only fatal errors are
// returned; page-level failures are counted.
func (r *run) visit(path string, stored *dbxdocs.Document) error {
	page, err := r.fetch(path)
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		switch dbxdocs.ErrorCode(err) {
		case dbxdocs.ENOTFOUND:
			r.result.NotFound++
			r.progress(ProgressEvent{Type: ProgressNotFound, Path: path, Visited: r.result.Visited, Error: err})
			return nil
		case dbxdocs.ENETWORK:
			r.incomplete = true
		}
		// Keep the stored copy and keep walking from it.
		r.result.Failed++
		r.reached[path] = true
		if stored != nil {
			r.enqueue(path, stored.RelatedPaths)
		}
		r.progress(ProgressEvent{Type: ProgressFailed, Path: path, Visited: r.result.Visited, Error: err})
		return nil
	}

	doc := r.document(path, page)
	changed := r.detector().HasChanged(stored, doc)

	if err := r.Documents.PutDocument(r.ctx, doc); err != nil {
		return r.storeErr("store "+path, err)
	}
	r.reached[path] = true
	r.result.Bytes += len(doc.Content)

	if changed {
		r.result.Changed++
		if r.TokenCounter != nil {
			if n, err := r.TokenCounter.CountTokens(r.ctx, doc.Content); err == nil {
				r.result.Tokens += n
			}
		}
	} else {
		r.result.Unchanged++
	}

	if changed || !doc.Indexed() {
		switch err := r.index(doc); {
		case err == nil:
			r.result.Indexed++
		case dbxdocs.ErrorCode(err) == dbxdocs.EEMBEDDING:
			// Stored but unindexed; the next run's reconcile retries it.
			r.result.IndexFailed++
			r.progress(ProgressEvent{Type: ProgressIndexFailed, Path: path, Error: err})
		default:
			return err
		}
	}

	r.enqueue(path, doc.RelatedPaths)
	r.progress(ProgressEvent{Type: ProgressFetched, Path: path, Changed: changed, Visited: r.result.Visited, Queued: r.frontier.Len()})
	return nil
}

func (r *run) fetch(path string) (*dbxdocs.Page, error) {
	url := r.Site.URL(path)

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetchFn := func(ctx context.Context, url string) (string, error) {
		if r.RateLimiter != nil {
			if err := r.RateLimiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		return r.Fetcher.Fetch(ctx, url)
	}
	logger := func(format string, args ...any) {
		r.progress(ProgressEvent{Type: ProgressRetry, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	html, err := FetchWithRetryDelays(r.ctx, url, fetchFn, logger, delays)
	if err != nil {
		return nil, err
	}

	page, err := r.Parser.Parse(html, url)
	if err != nil {
		if dbxdocs.ErrorCode(err) == dbxdocs.EINTERNAL {
			return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "parse %s: %v", path, err)
		}
		return nil, err
	}
	return page, nil
}

func (r *run) document(path string, page *dbxdocs.Page) *dbxdocs.Document {
	category, subcategory := r.Site.Categorize(path)

	var related []string
	seen := map[string]bool{path: true}
	for _, p := range page.RelatedPaths {
		if np, ok := r.Site.Path(p); ok && !seen[np] {
			seen[np] = true
			related = append(related, np)
		}
	}

	return &dbxdocs.Document{
		Path:         path,
		URL:          r.Site.URL(path),
		Title:        page.Title,
		Content:      page.Content,
		Breadcrumb:   page.Breadcrumb,
		RelatedPaths: related,
		Category:     category,
		Subcategory:  subcategory,
		ContentHash:  ComputeHash(page.Content),
		FetchedAt:    r.now(),
	}
}

// index embeds doc and records the indexed hash. Embedding failures are
// returned as EEMBEDDING; everything else is fatal.
func (r *run) index(doc *dbxdocs.Document) error {
	if err := r.Index.Index(r.ctx, doc); err != nil {
		if dbxdocs.ErrorCode(err) == dbxdocs.EEMBEDDING {
			return err
		}
		return r.storeErr("index "+doc.Path, err)
	}
	if err := r.Documents.MarkIndexed(r.ctx, doc.Path, doc.ContentHash); err != nil {
		return r.storeErr("mark indexed "+doc.Path, err)
	}
	doc.IndexedHash = doc.ContentHash
	return nil
}

func (r *run) enqueue(from string, paths []string) {
	for _, p := range paths {
		if np, ok := r.Site.Path(p); ok && np != from {
			r.frontier.Push(np)
		}
	}
}

// prune deletes stored documents that were not reached during a complete
// run. The document goes first so an interruption leaves at most an orphan
// vector, which the next reconcile removes.
func (r *run) prune() error {
	if !r.opts.Prune || r.incomplete || r.partial {
		return nil
	}

	paths, err := r.Documents.FindDocumentPaths(r.ctx)
	if err != nil {
		return r.storeErr("list documents", err)
	}
	for _, p := range paths {
		if r.reached[p] {
			continue
		}
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if err := r.Documents.DeleteDocument(r.ctx, p); err != nil && dbxdocs.ErrorCode(err) != dbxdocs.ENOTFOUND {
			return r.storeErr("delete "+p, err)
		}
		if err := r.Index.Remove(r.ctx, p); err != nil {
			return r.storeErr("remove "+p, err)
		}
		r.result.Pruned++
		r.progress(ProgressEvent{Type: ProgressPruned, Path: p})
	}
	return nil
}

// storeErr classifies a store failure. Context errors pass through so
// cancellation is reported as such.
func (r *run) storeErr(op string, err error) error {
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return unavailable(op, err)
}

func unavailable(op string, err error) error {
	if dbxdocs.ErrorCode(err) == dbxdocs.EUNAVAILABLE {
		return fmt.Errorf("%s: %w", op, err)
	}
	return dbxdocs.Errorf(dbxdocs.EUNAVAILABLE, "%s: %v", op, err)
}
