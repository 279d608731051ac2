package dbxdocs

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultExcludePatterns are URL patterns that are never crawled: archived
// pages, search result pages and query-driven listings.
var DefaultExcludePatterns = []string{`/archive/`, `/search-for`, `\?s=`}

// OtherCategory is assigned to paths without a category segment.
const OtherCategory = "other"

// Site describes the documentation site being indexed. Paths are the
// identity of documents; URLs are derived from them.
type Site struct {
	base    *url.URL
	scope   string
	exclude *URLFilter
}

// NewSite returns a Site rooted at baseURL. Only paths under scope are
// considered part of the corpus. An empty scope means the whole host.
func NewSite(baseURL, scope string, exclude *URLFilter) (*Site, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid base URL %q: %v", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "base URL must be http or https: %q", baseURL)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "base URL has no host: %q", baseURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""

	scope = NormalizePath(scope)
	if scope != "/" {
		scope += "/"
	}

	return &Site{base: u, scope: scope, exclude: exclude}, nil
}

// NewExcludeFilter compiles patterns into a URLFilter that rejects any URL
// matching one of them.
func NewExcludeFilter(patterns []string) (*URLFilter, error) {
	f := &URLFilter{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		f.Exclude = append(f.Exclude, re)
	}
	return f, nil
}

// Exclude returns the filter applied to every URL, or nil.
func (s *Site) Exclude() *URLFilter {
	return s.exclude
}

// BaseURL returns the scheme and host of the site.
func (s *Site) BaseURL() string {
	return s.base.String()
}

// Root returns the scope path, the default crawl root.
func (s *Site) Root() string {
	return NormalizePath(s.scope)
}

// URL returns the absolute URL for a document path.
func (s *Site) URL(p string) string {
	u := *s.base
	u.Path = NormalizePath(p)
	return u.String()
}

// Path resolves rawURL, which may be relative to the site root, into a
// normalised document path. The bool result is false when the URL is on
// another host, outside the scope, excluded, or points at a non-page asset.
func (s *Site) Path(rawURL string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	u := s.base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Host, s.base.Host) {
		return "", false
	}
	if !s.exclude.Match(u.String()) {
		return "", false
	}

	p := NormalizePath(u.Path)
	if !s.InScope(p) {
		return "", false
	}
	if isAsset(p) {
		return "", false
	}
	return p, true
}

// InScope reports whether a normalised path lies under the site scope.
func (s *Site) InScope(p string) bool {
	if s.scope == "/" {
		return true
	}
	return strings.HasPrefix(p+"/", s.scope)
}

// Categorize returns the category and subcategory of a path: the first and
// second segments after the scope prefix.
//
//	/aws/en/compute/clusters/configure -> compute, clusters
func (s *Site) Categorize(p string) (category, subcategory string) {
	rest := strings.TrimPrefix(NormalizePath(p)+"/", s.scope)
	var segments []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	category = OtherCategory
	if len(segments) > 0 {
		category = segments[0]
	}
	if len(segments) > 1 {
		subcategory = segments[1]
	}
	return category, subcategory
}

// NormalizePath canonicalises a document path: leading slash, no query or
// fragment, no duplicate or trailing slashes except for the root.
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	return p
}

var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".pdf": true, ".zip": true, ".gz": true,
	".tar": true, ".css": true, ".js": true, ".json": true, ".xml": true,
	".txt": true, ".mp4": true, ".ipynb": true, ".whl": true, ".jar": true,
}

func isAsset(p string) bool {
	return assetExtensions[strings.ToLower(path.Ext(p))]
}
