// Package htmltomarkdown turns cleaned page bodies into Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.Converter = (*Converter)(nil)

// Converter renders HTML fragments as CommonMark with GFM tables.
type Converter struct {
	conv   *converter.Converter
	domain string
}

// Option configures a Converter.
type Option func(*Converter)

// WithDomain makes relative link and image targets absolute against
// domain, e.g. https://docs.databricks.com.
func WithDomain(domain string) Option {
	return func(c *Converter) {
		c.domain = strings.TrimSuffix(domain, "/")
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms an HTML fragment into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", dbxdocs.Errorf(dbxdocs.EPARSE, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if c.domain != "" {
		opts = append(opts, converter.WithDomain(c.domain))
	}
	md, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", dbxdocs.Errorf(dbxdocs.EPARSE, "convert to markdown: %v", err)
	}
	return md, nil
}
