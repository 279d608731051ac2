package dbxdocs

import (
	"context"
	"regexp"
)

// SitemapService discovers page URLs from a site's sitemaps. The crawler
// uses it to seed its frontier so pages that are not linked from anywhere
// reachable are still indexed.
type SitemapService interface {
	// DiscoverURLs returns page URLs listed by a sitemap. The location may be
	// a sitemap URL (ending in .xml) or a site root, in which case robots.txt
	// and then /sitemap.xml are consulted. Sitemap indexes are resolved
	// recursively.
	//
	// If filter is nil, all URLs are returned.
	DiscoverURLs(ctx context.Context, location string, filter *URLFilter) ([]string, error)
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}
