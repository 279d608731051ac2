package dbxdocs

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// SectionSummary is the listing entry for one document.
type SectionSummary struct {
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	UseCases    []string `json:"use_cases"`

	// ChildCount is the number of stored documents nested below Path.
	ChildCount int `json:"child_count"`
}

// NewSectionSummary projects a document into its listing entry.
func NewSectionSummary(doc *Document) *SectionSummary {
	return &SectionSummary{
		Title:       doc.Title,
		Path:        doc.Path,
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
		UseCases:    UseCases(doc.Category),
	}
}

// DefaultUseCase describes documents in categories without authored use cases.
const DefaultUseCase = "General documentation"

var categoryUseCases = map[string][]string{
	"compute":          {"Create and manage clusters", "Configure autoscaling", "Use serverless compute"},
	"delta":            {"Create Delta tables", "Optimize table performance", "Use time travel"},
	"admin":            {"Manage workspaces", "Configure users and groups", "Set up SSO"},
	"data-governance":  {"Set up Unity Catalog", "Configure access control", "Track data lineage"},
	"dev-tools":        {"Use Databricks CLI", "Configure asset bundles", "API authentication"},
	"connect":          {"Connect to storage", "Set up streaming", "External integrations"},
	"sql":              {"Write SQL queries", "Use SQL functions", "Query optimization"},
	"machine-learning": {"Train ML models", "Track experiments", "Deploy models"},
	"generative-ai":    {"Use AI features", "Build AI applications", "LLM integration"},
	"workflows":        {"Create jobs", "Schedule workflows", "Monitor runs"},
	"notebooks":        {"Create notebooks", "Use magic commands", "Visualize data"},
	"dashboards":       {"Create dashboards", "Build visualizations", "Share insights"},
}

// CountChildren maps every ancestor path to the number of paths nested
// anywhere below it.
//
//	["/a/b", "/a/b/c"] -> {"/a": 2, "/a/b": 1}
func CountChildren(paths []string) map[string]int {
	counts := make(map[string]int)
	for _, p := range paths {
		p = NormalizePath(p)
		for i := 1; i < len(p); i++ {
			if p[i] == '/' {
				counts[p[:i]]++
			}
		}
	}
	return counts
}

// UseCases returns the authored use cases for a category.
func UseCases(category string) []string {
	if uc, ok := categoryUseCases[category]; ok {
		out := make([]string, len(uc))
		copy(out, uc)
		return out
	}
	return []string{DefaultUseCase}
}

// Outline renders the heading hierarchy of markdown as indented lines.
func Outline(markdown string) string {
	sections := ExtractSections(markdown)
	if len(sections) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(strings.Repeat("  ", s.Level-1))
		sb.WriteString(s.Title)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Section represents a heading in a markdown document.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// ExtractSections parses markdown and returns all headings (H1-H6).
// It generates URL-safe anchors and handles duplicates with numeric suffixes.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	cleaned := codeBlockRe.ReplaceAllString(markdown, "")
	matches := headingRe.FindAllStringSubmatch(cleaned, -1)

	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	anchorCounts := make(map[string]int)

	for _, match := range matches {
		level := len(match[1])
		title := strings.TrimSpace(match[2])
		baseAnchor := generateAnchor(title)

		anchor := baseAnchor
		if count, exists := anchorCounts[baseAnchor]; exists {
			anchor = baseAnchor + "-" + strconv.Itoa(count)
			anchorCounts[baseAnchor]++
		} else {
			anchorCounts[baseAnchor] = 1
		}

		sections = append(sections, Section{
			Level:  level,
			Title:  title,
			Anchor: anchor,
		})
	}

	return sections
}

var (
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
	headingRe   = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
)

// generateAnchor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
