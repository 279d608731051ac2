package mock

import "github.com/fwojciec/dbxdocs"

var _ dbxdocs.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of dbxdocs.PageParser.
type PageParser struct {
	ParseFn func(html, url string) (*dbxdocs.Page, error)
}

func (p *PageParser) Parse(html, url string) (*dbxdocs.Page, error) {
	return p.ParseFn(html, url)
}
