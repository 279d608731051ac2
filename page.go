package dbxdocs

// Page is the normalised result of parsing one fetched documentation page.
type Page struct {
	// Path is the document path the page was fetched for.
	Path string

	// URL is the absolute URL the page was fetched from.
	URL string

	Title string

	// Breadcrumb is the navigation trail, root first.
	Breadcrumb []string

	// Content is the page body as markdown.
	Content string

	// RelatedPaths are in-scope internal links from the body and the
	// see-also region, normalised, deduplicated, in document order.
	RelatedPaths []string
}

// PageParser turns raw HTML into a Page.
type PageParser interface {
	// Parse extracts title, breadcrumb, markdown body and related paths
	// from html fetched from url. Returns EPARSE when the page has no
	// usable content.
	Parse(html, url string) (*Page, error)
}
