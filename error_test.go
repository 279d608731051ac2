package dbxdocs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := dbxdocs.Errorf(dbxdocs.ENOTFOUND, "document %q not found", "/aws/en/compute")

	assert.Equal(t, dbxdocs.ENOTFOUND, dbxdocs.ErrorCode(err))
	assert.Equal(t, "document \"/aws/en/compute\" not found", dbxdocs.ErrorMessage(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, dbxdocs.ErrorCode(nil))
	})

	t.Run("unwraps wrapped application error", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("fetch page: %w", dbxdocs.Errorf(dbxdocs.ENETWORK, "timeout"))

		assert.Equal(t, dbxdocs.ENETWORK, dbxdocs.ErrorCode(err))
		assert.Equal(t, "timeout", dbxdocs.ErrorMessage(err))
	})

	t.Run("non-application error is internal", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")

		assert.Equal(t, dbxdocs.EINTERNAL, dbxdocs.ErrorCode(err))
		assert.Equal(t, "Internal error", dbxdocs.ErrorMessage(err))
	})
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, dbxdocs.ErrorMessage(nil))
}
