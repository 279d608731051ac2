package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	docs, err := deps.Documents.CountDocuments(deps.Ctx, dbxdocs.DocumentFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	unindexed, err := deps.Documents.CountDocuments(deps.Ctx, dbxdocs.DocumentFilter{Unindexed: true})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	embeddings, err := deps.Embeddings.CountEmbeddings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	categories, err := deps.Documents.FindCategories(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Site:       %s%s\n", deps.Site.BaseURL(), deps.Site.Root())
	fmt.Fprintf(deps.Stdout, "Documents:  %d (%d not indexed)\n", docs, unindexed)
	fmt.Fprintf(deps.Stdout, "Embeddings: %d\n", embeddings)
	fmt.Fprintf(deps.Stdout, "Categories: %d\n", len(categories))

	runs, err := deps.Runs.FindCrawlRuns(deps.Ctx, c.Runs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "\nNo crawl runs yet.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, "\nRecent crawls:")
	for _, r := range runs {
		took := "-"
		if !r.FinishedAt.IsZero() {
			took = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(deps.Stdout, "  %s  %-11s %-9s %6s  fetched %d, changed %d, failed %d, pruned %d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Status, took,
			r.Fetched, r.Changed, r.Failed, r.Pruned)
		if r.Error != "" {
			fmt.Fprintf(deps.Stdout, "      %s\n", r.Error)
		}
	}
	return nil
}
