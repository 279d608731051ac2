// Package trafilatura locates the main content of pages whose markup the
// page parser does not recognise.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/dbxdocs"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ dbxdocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Links are kept in the extracted content
// so related pages can still be discovered.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
	}}
}

// Extract returns the page title and main content as HTML.
func (e *Extractor) Extract(rawHTML string) (*dbxdocs.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "extract content: %v", err)
	}
	if result.ContentNode == nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "no main content found")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, dbxdocs.Errorf(dbxdocs.EPARSE, "render content: %v", err)
	}

	return &dbxdocs.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
