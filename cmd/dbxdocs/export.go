package main

import (
	"fmt"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	n, err := fs.NewExporter(deps.Documents).Export(deps.Ctx, c.Dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbxdocs.ErrorMessage(err))
		return err
	}
	deps.Logger.Info("exported documents", "dir", c.Dir, "count", n)
	fmt.Fprintf(deps.Stdout, "Exported %d documents to %s\n", n, c.Dir)
	return nil
}
