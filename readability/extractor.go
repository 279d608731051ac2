// Package readability is an alternative fallback extractor based on the
// Mozilla Readability algorithm.
package readability

import (
	"strings"

	"github.com/fwojciec/dbxdocs"
	"github.com/go-shiori/go-readability"
)

var _ dbxdocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and content as HTML.
func (e *Extractor) Extract(rawHTML string) (*dbxdocs.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "extract article: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "no readable content found")
	}

	return &dbxdocs.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
