// Package goquery parses documentation pages with goquery.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/dbxdocs"
)

// DefaultTitle is used when a page has no usable title.
const DefaultTitle = "Untitled"

var (
	breadcrumbSelectors = []string{
		".breadcrumbs",
		"[aria-label=breadcrumbs]",
		".breadcrumb",
		"nav.breadcrumbs",
	}

	bodySelectors = []string{
		"article",
		"main",
		"[role=main]",
		".theme-doc-markdown",
		"#__docusaurus_skipToContent_fallback",
	}

	seeAlsoSelector = `.pagination-nav, [class*="see-also"], [class*="related"]`

	chromeSelector = strings.Join([]string{
		"nav", "footer", "script", "style", "noscript",
		".breadcrumbs",
		`[class*="sidebar"]`,
		`[class*="toc"]`,
		`[class*="pagination"]`,
		`[class*="feedback"]`,
		`[class*="edit-page"]`,
		".theme-doc-toc-mobile",
		".theme-doc-footer",
	}, ", ")

	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

var _ dbxdocs.PageParser = (*Parser)(nil)

// Parser extracts a Page from documentation HTML.
//
// The body comes from the first known content container. When none
// matches, Extractor supplies the main content instead.
type Parser struct {
	Converter dbxdocs.Converter
	Extractor dbxdocs.Extractor

	// Filter, when set, drops related links whose full URL it rejects.
	Filter *dbxdocs.URLFilter
}

// NewParser creates a new Parser.
func NewParser(converter dbxdocs.Converter, extractor dbxdocs.Extractor) *Parser {
	return &Parser{Converter: converter, Extractor: extractor}
}

// Parse implements dbxdocs.PageParser.
func (p *Parser) Parse(html, pageURL string) (*dbxdocs.Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "invalid page URL %q: %v", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "parse HTML: %v", err)
	}

	page := &dbxdocs.Page{
		Path:       dbxdocs.NormalizePath(base.Path),
		URL:        pageURL,
		Title:      title(doc),
		Breadcrumb: breadcrumb(doc),
	}

	var contentHTML string
	if body := findBody(doc); body != nil {
		// Links are gathered before chrome removal so see-also regions
		// inside the body still count.
		page.RelatedPaths = relatedPaths(base, p.Filter, body, doc.Find(seeAlsoSelector))
		body.Find(chromeSelector).Remove()
		if strings.TrimSpace(body.Text()) != "" {
			if contentHTML, err = body.Html(); err != nil {
				return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "render body of %s: %v", pageURL, err)
			}
		}
	}

	if contentHTML == "" {
		if p.Extractor == nil {
			return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "no content found in %s", pageURL)
		}
		res, err := p.Extractor.Extract(html)
		if err != nil {
			return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "no content found in %s: %s", pageURL, dbxdocs.ErrorMessage(err))
		}
		contentHTML = res.ContentHTML
		if page.Title == DefaultTitle && res.Title != "" {
			page.Title = res.Title
		}
		if extracted, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML)); err == nil {
			page.RelatedPaths = relatedPaths(base, p.Filter, extracted.Selection, doc.Find(seeAlsoSelector))
		}
	}

	md, err := p.Converter.Convert(contentHTML)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "convert %s: %s", pageURL, dbxdocs.ErrorMessage(err))
	}
	page.Content = CleanMarkdown(md)
	if page.Content == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "empty content in %s", pageURL)
	}
	return page, nil
}

// CleanMarkdown trims surrounding blank lines and collapses runs of three
// or more newlines to two.
func CleanMarkdown(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = blankLinesRe.ReplaceAllString(md, "\n\n")
	return strings.Trim(md, " \t\n")
}

// title picks the first h1, then og:title, then the <title> text before
// any " | Site" suffix.
func title(doc *goquery.Document) string {
	if h1 := collapse(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = collapse(og); og != "" {
			return og
		}
	}
	t := doc.Find("title").First().Text()
	if i := strings.Index(t, "|"); i >= 0 {
		t = t[:i]
	}
	if t = collapse(t); t != "" {
		return t
	}
	return DefaultTitle
}

func breadcrumb(doc *goquery.Document) []string {
	for _, sel := range breadcrumbSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		items := container.Find("li")
		if items.Length() == 0 {
			items = container.Find("a")
		}
		var trail []string
		items.Each(func(_ int, s *goquery.Selection) {
			if text := collapse(s.Text()); text != "" {
				trail = append(trail, text)
			}
		})
		if len(trail) > 0 {
			return trail
		}
	}
	return nil
}

func findBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range bodySelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
