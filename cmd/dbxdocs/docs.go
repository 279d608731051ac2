package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dbxdocs"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	docs, err := deps.Retrieval.GetDocumentation(deps.Ctx, dbxdocs.GetDocumentationRequest{
		Paths:          c.Paths,
		IncludeRelated: c.Related,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no documents found. Use 'dbxdocs sections' to see available paths.")
		return dbxdocs.Errorf(dbxdocs.ENOTFOUND, "no documents found")
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	fmt.Fprintln(deps.Stdout, dbxdocs.FormatDocumentation(docs))
	return nil
}
