package dbxdocs_test

import (
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/stretchr/testify/assert"
)

func TestExtractSections(t *testing.T) {
	t.Parallel()

	t.Run("extracts H1 heading", func(t *testing.T) {
		t.Parallel()

		markdown := "# Introduction\n\nSome content here."

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 1)
		assert.Equal(t, 1, sections[0].Level)
		assert.Equal(t, "Introduction", sections[0].Title)
		assert.Equal(t, "introduction", sections[0].Anchor)
	})

	t.Run("extracts H2 through H6 headings", func(t *testing.T) {
		t.Parallel()

		markdown := `# H1 Title
## H2 Title
### H3 Title
#### H4 Title
##### H5 Title
###### H6 Title`

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 6)
		assert.Equal(t, 1, sections[0].Level)
		assert.Equal(t, 2, sections[1].Level)
		assert.Equal(t, 3, sections[2].Level)
		assert.Equal(t, 4, sections[3].Level)
		assert.Equal(t, 5, sections[4].Level)
		assert.Equal(t, 6, sections[5].Level)
	})

	t.Run("generates URL-safe anchors", func(t *testing.T) {
		t.Parallel()

		markdown := "# Getting Started With Go"

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 1)
		assert.Equal(t, "getting-started-with-go", sections[0].Anchor)
	})

	t.Run("handles duplicate headings with numeric suffixes", func(t *testing.T) {
		t.Parallel()

		markdown := `# Example
## Example
### Example`

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 3)
		assert.Equal(t, "example", sections[0].Anchor)
		assert.Equal(t, "example-1", sections[1].Anchor)
		assert.Equal(t, "example-2", sections[2].Anchor)
	})

	t.Run("returns empty slice for empty markdown", func(t *testing.T) {
		t.Parallel()

		sections := dbxdocs.ExtractSections("")

		assert.Empty(t, sections)
	})

	t.Run("returns empty slice for markdown without headings", func(t *testing.T) {
		t.Parallel()

		markdown := "Just some text\n\nWith paragraphs."

		sections := dbxdocs.ExtractSections(markdown)

		assert.Empty(t, sections)
	})

	t.Run("strips special characters from anchors", func(t *testing.T) {
		t.Parallel()

		markdown := "# API Reference (v2.0)"

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 1)
		assert.Equal(t, "api-reference-v20", sections[0].Anchor)
	})

	t.Run("ignores code blocks with hash symbols", func(t *testing.T) {
		t.Parallel()

		markdown := `# Real Heading

` + "```bash\n# This is a comment\necho hello\n```" + `

## Another Real Heading`

		sections := dbxdocs.ExtractSections(markdown)

		assert.Len(t, sections, 2)
		assert.Equal(t, "Real Heading", sections[0].Title)
		assert.Equal(t, "Another Real Heading", sections[1].Title)
	})
}

func TestUseCases(t *testing.T) {
	t.Parallel()

	t.Run("returns authored use cases for known category", func(t *testing.T) {
		t.Parallel()

		uc := dbxdocs.UseCases("compute")

		assert.Equal(t, []string{"Create and manage clusters", "Configure autoscaling", "Use serverless compute"}, uc)
		assert.NotContains(t, uc, dbxdocs.DefaultUseCase)
	})

	t.Run("falls back to general documentation", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{dbxdocs.DefaultUseCase}, dbxdocs.UseCases("release-notes"))
	})

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()

		uc := dbxdocs.UseCases("sql")
		uc[0] = "mutated"

		assert.NotEqual(t, "mutated", dbxdocs.UseCases("sql")[0])
	})
}

func TestCountChildren(t *testing.T) {
	t.Parallel()

	counts := dbxdocs.CountChildren([]string{
		"/aws/en/compute",
		"/aws/en/compute/clusters",
		"/aws/en/compute/clusters/create/",
		"/aws/en/sql",
	})

	assert.Equal(t, 4, counts["/aws"])
	assert.Equal(t, 4, counts["/aws/en"])
	assert.Equal(t, 2, counts["/aws/en/compute"])
	assert.Equal(t, 1, counts["/aws/en/compute/clusters"])
	assert.Zero(t, counts["/aws/en/sql"])
	assert.Zero(t, counts["/aws/en/compute/clusters/create"])
}

func TestNewSectionSummary(t *testing.T) {
	t.Parallel()

	doc := &dbxdocs.Document{
		Path:        "/aws/en/delta/merge",
		Title:       "Upsert with MERGE",
		Category:    "delta",
		Subcategory: "merge",
		Content:     "ignored",
	}

	s := dbxdocs.NewSectionSummary(doc)

	assert.Equal(t, "Upsert with MERGE", s.Title)
	assert.Equal(t, "/aws/en/delta/merge", s.Path)
	assert.Equal(t, "delta", s.Category)
	assert.Equal(t, "merge", s.Subcategory)
	assert.Contains(t, s.UseCases, "Use time travel")
	assert.Zero(t, s.ChildCount)
}

func TestOutline(t *testing.T) {
	t.Parallel()

	md := "# Clusters\n\ntext\n\n## Create\n\n### From the UI\n\n## Delete\n"

	assert.Equal(t, "Clusters\n  Create\n    From the UI\n  Delete\n", dbxdocs.Outline(md))
	assert.Empty(t, dbxdocs.Outline("no headings"))
}
