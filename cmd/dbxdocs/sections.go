package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dbxdocs"
)

// Run executes the sections command.
func (c *SectionsCmd) Run(deps *Dependencies) error {
	list, err := deps.Retrieval.ListSections(deps.Ctx, dbxdocs.ListSectionsRequest{
		Category:    c.Category,
		SearchQuery: c.Query,
		Limit:       c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list.Sections) == 0 {
		fmt.Fprintln(deps.Stdout, "No sections found. Run 'dbxdocs crawl' to index the documentation.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Sections (%d of %d):\n\n", len(list.Sections), list.TotalCount)
	for _, s := range list.Sections {
		category := s.Category
		if s.Subcategory != "" {
			category += "/" + s.Subcategory
		}
		fmt.Fprintf(deps.Stdout, "  %s [%s]\n     %s\n", s.Title, category, s.Path)
	}
	fmt.Fprintf(deps.Stdout, "\nCategories: %v\n", list.Categories)
	return nil
}
