package mcp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/dbxdocs"
	"github.com/fwojciec/dbxdocs/mcp"
	"github.com/fwojciec/dbxdocs/mock"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ListSections(t *testing.T) {
	t.Parallel()

	t.Run("passes arguments through", func(t *testing.T) {
		t.Parallel()

		var got dbxdocs.ListSectionsRequest
		s := mcp.NewServer(&mock.RetrievalService{
			ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
				got = req
				return &dbxdocs.SectionList{
					Sections:   []*dbxdocs.SectionSummary{{Path: "/aws/en/sql/warehouses", Title: "SQL warehouses", Category: "sql"}},
					TotalCount: 12,
					Categories: []string{"compute", "sql"},
				}, nil
			},
		}, "test")

		_, out, err := s.ListSections(context.Background(), nil, mcp.ListSectionsInput{
			Category:    "sql",
			SearchQuery: "warehouse sizing",
			Limit:       5,
		})

		require.NoError(t, err)
		assert.Equal(t, dbxdocs.ListSectionsRequest{Category: "sql", SearchQuery: "warehouse sizing", Limit: 5}, got)
		require.Len(t, out.Sections, 1)
		assert.Equal(t, "/aws/en/sql/warehouses", out.Sections[0].Path)
		assert.Equal(t, 12, out.TotalCount)
		assert.Equal(t, []string{"compute", "sql"}, out.Categories)
	})

	t.Run("empty result has empty lists", func(t *testing.T) {
		t.Parallel()

		s := mcp.NewServer(&mock.RetrievalService{
			ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
				return &dbxdocs.SectionList{}, nil
			},
		}, "test")

		_, out, err := s.ListSections(context.Background(), nil, mcp.ListSectionsInput{})

		require.NoError(t, err)
		assert.NotNil(t, out.Sections)
		assert.NotNil(t, out.Categories)
	})

	t.Run("reports invalid request message", func(t *testing.T) {
		t.Parallel()

		s := mcp.NewServer(&mock.RetrievalService{
			ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
				return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "limit must not be negative")
			},
		}, "test")

		_, _, err := s.ListSections(context.Background(), nil, mcp.ListSectionsInput{Limit: -1})

		assert.EqualError(t, err, "limit must not be negative")
	})

	t.Run("hides internal errors", func(t *testing.T) {
		t.Parallel()

		s := mcp.NewServer(&mock.RetrievalService{
			ListSectionsFn: func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
				return nil, errors.New("sqlite: disk I/O error at /home/user/.dbxdocs/content.db")
			},
		}, "test")

		_, _, err := s.ListSections(context.Background(), nil, mcp.ListSectionsInput{})

		assert.EqualError(t, err, "Internal error")
	})
}

func TestServer_GetDocumentation(t *testing.T) {
	t.Parallel()

	t.Run("returns documents", func(t *testing.T) {
		t.Parallel()

		var got dbxdocs.GetDocumentationRequest
		s := mcp.NewServer(&mock.RetrievalService{
			GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
				got = req
				return []*dbxdocs.DocumentationContent{{Path: "/aws/en/compute", Title: "Compute", Content: "# Compute"}}, nil
			},
		}, "test")

		_, out, err := s.GetDocumentation(context.Background(), nil, mcp.GetDocumentationInput{
			Paths:          []string{"/aws/en/compute", "/missing"},
			IncludeRelated: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"/aws/en/compute", "/missing"}, got.Paths)
		assert.True(t, got.IncludeRelated)
		require.Len(t, out.Documents, 1)
		assert.Equal(t, "# Compute", out.Documents[0].Content)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		t.Parallel()

		s := mcp.NewServer(&mock.RetrievalService{
			GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
				return nil, nil
			},
		}, "test")

		_, out, err := s.GetDocumentation(context.Background(), nil, mcp.GetDocumentationInput{Paths: []string{"/missing"}})

		require.NoError(t, err)
		assert.Equal(t, []*dbxdocs.DocumentationContent{}, out.Documents)
	})

	t.Run("cancellation is passed through", func(t *testing.T) {
		t.Parallel()

		s := mcp.NewServer(&mock.RetrievalService{
			GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
				return nil, context.Canceled
			},
		}, "test")

		_, _, err := s.GetDocumentation(context.Background(), nil, mcp.GetDocumentationInput{Paths: []string{"/a"}})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServer_Session(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := mcp.NewServer(&mock.RetrievalService{
		GetDocumentationFn: func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
			return nil, req.Validate()
		},
	}, "test")

	clientTransport, serverTransport := sdk.NewInMemoryTransports()
	serverSession, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	defer serverSession.Close()

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{mcp.ToolListSections, mcp.ToolGetDocumentation}, names)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name:      mcp.ToolGetDocumentation,
		Arguments: map[string]any{"paths": []string{}},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "at least one path required")
}
