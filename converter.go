package dbxdocs

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms a cleaned HTML fragment into Markdown.
	Convert(html string) (string, error)
}
