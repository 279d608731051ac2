package http

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from sitemaps over HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used. Pass a client from
// NewRateLimitedClient to share the crawl rate limit.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, userAgent: DefaultUserAgent}
}

// DiscoverURLs returns the page URLs listed by the sitemap at location.
//
// A location ending in .xml is read directly. Otherwise it is treated as a
// site URL: sitemaps are looked up in robots.txt, then at /sitemap.xml, and
// when the location has a path only URLs under that path are kept.
func (s *SitemapService) DiscoverURLs(ctx context.Context, location string, filter *dbxdocs.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := url.Parse(location)
	if err != nil || loc.Host == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "invalid sitemap location %q", location)
	}

	var sitemaps []string
	var prefix string
	if strings.EqualFold(path.Ext(loc.Path), ".xml") {
		sitemaps = []string{loc.String()}
	} else {
		if loc.Path != "/" {
			prefix = loc.Path
		}
		root := *loc
		root.Path, root.RawQuery, root.Fragment = "", "", ""
		if sitemaps, err = s.findSitemapURLs(ctx, &root); err != nil {
			return nil, err
		}
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sm := range sitemaps {
		found, err := s.processSitemap(ctx, sm, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if prefix != "" && !matchesPathPrefix(u, prefix) {
				continue
			}
			if !filter.Match(u) {
				continue
			}
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// matchesPathPrefix reports whether the path of rawURL lies under prefix,
// respecting segment boundaries: /docs matches /docs/intro, not /documents.
func matchesPathPrefix(rawURL, prefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

// findSitemapURLs reads Sitemap: directives from robots.txt, falling back
// to /sitemap.xml. Missing files are not an error.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robots := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	sitemaps, err := s.parseRobots(ctx, robots)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if dbxdocs.ErrorCode(err) == dbxdocs.ENETWORK {
		return nil, err
	}
	return []string{root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

func (s *SitemapService) parseRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := get(ctx, s.client, robotsURL, s.userAgent, "text/plain")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.ENETWORK, "read robots.txt: %v", err)
	}
	return sitemaps, nil
}

// processSitemap fetches one sitemap and returns its page URLs, descending
// into sitemap indexes. Each sitemap is read at most once.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := get(ctx, s.client, sitemapURL, s.userAgent, "application/xml,text/xml")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "parse sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "empty sitemap %s", sitemapURL)
	}

	switch root.Tag {
	case "sitemapindex":
		var urls []string
		for _, child := range locs(root, "sitemap") {
			found, err := s.processSitemap(ctx, child, seen)
			if err != nil {
				return nil, fmt.Errorf("sitemap index %s: %w", sitemapURL, err)
			}
			urls = append(urls, found...)
		}
		return urls, nil
	case "urlset":
		return locs(root, "url"), nil
	default:
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "unexpected sitemap root <%s> in %s", root.Tag, sitemapURL)
	}
}

// locs returns the non-empty <loc> values of root's tag children.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}
