package dbxdocs

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor locates the main content of a page using heuristics. The page
// parser falls back to it when none of its known content containers match.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
