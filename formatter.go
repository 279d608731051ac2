package dbxdocs

import "strings"

// FormatDocumentation renders documents as markdown for terminal display.
// Each document gets a heading with its title (or path), its breadcrumb
// trail and, when present, its related paths. Documents are separated by
// blank lines.
func FormatDocumentation(docs []*DocumentationContent) string {
	if len(docs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		var sb strings.Builder
		header := doc.Title
		if header == "" {
			header = doc.Path
		}
		sb.WriteString("## " + header + "\n")
		sb.WriteString("Path: " + doc.Path + "\n")
		if len(doc.Breadcrumb) > 0 {
			sb.WriteString("Breadcrumb: " + strings.Join(doc.Breadcrumb, " > ") + "\n")
		}
		sb.WriteString("\n" + doc.Content)
		if len(doc.RelatedPaths) > 0 {
			sb.WriteString("\n\nRelated:\n")
			for _, p := range doc.RelatedPaths {
				sb.WriteString("- " + p + "\n")
			}
		}
		parts = append(parts, strings.TrimRight(sb.String(), "\n"))
	}

	return strings.Join(parts, "\n\n")
}
