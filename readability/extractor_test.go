package readability_test

import (
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts article content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Delta Lake time travel | Databricks on AWS</title></head>
<body>
<div class="menu"><a href="/aws/en/">Docs</a> <a href="/aws/en/delta">Delta</a></div>
<div class="content">
<h1>Work with Delta Lake table history</h1>
<p>Each operation that modifies a Delta Lake table creates a new table version. You can use history
information to audit operations, roll back a table, or query a table at a specific point in time
using time travel.</p>
<p>Delta Lake time travel lets you query an older snapshot of a table with the VERSION AS OF or
TIMESTAMP AS OF clauses. Retention of data files is controlled by table properties.</p>
</div>
</body>
</html>`

		result, err := readability.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.Title, "Delta Lake")
		assert.Contains(t, result.ContentHTML, "time travel")
	})

	t.Run("empty input is parse error", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract(" ")

		assert.Equal(t, dbxdocs.EPARSE, dbxdocs.ErrorCode(err))
	})
}
