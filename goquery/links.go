package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/dbxdocs"
)

// relatedPaths returns the normalised paths of same-host links found in
// the given regions, in document order, without duplicates or the page
// itself. Links the filter rejects are skipped before their query string
// is dropped.
func relatedPaths(base *url.URL, filter *dbxdocs.URLFilter, regions ...*goquery.Selection) []string {
	self := dbxdocs.NormalizePath(base.Path)
	seen := map[string]bool{self: true}
	var paths []string

	for _, region := range regions {
		region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if href == "" || isNonHTTPLink(href) {
				return
			}
			u := resolveURL(base, href)
			if u == nil || !isSameHost(base, u) || !filter.Match(u.String()) {
				return
			}
			p := dbxdocs.NormalizePath(u.Path)
			if seen[p] {
				return
			}
			seen[p] = true
			paths = append(paths, p)
		})
	}
	return paths
}

// resolveURL resolves href against base with the fragment stripped.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	u := base.ResolveReference(ref)
	u.Fragment = ""
	return u
}

// isSameHost uses exact host matching; subdomains are different hosts.
func isSameHost(base, u *url.URL) bool {
	return strings.EqualFold(u.Host, base.Host)
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(href, scheme) {
			return true
		}
	}
	return false
}
