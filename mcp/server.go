// Package mcp exposes the retrieval service as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"

	"github.com/fwojciec/dbxdocs"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName identifies the server to MCP clients.
const ServerName = "dbxdocs"

// Tool names.
const (
	ToolListSections     = "list_sections"
	ToolGetDocumentation = "get_documentation"
)

// ListSectionsInput is the argument of the list_sections tool.
type ListSectionsInput struct {
	Category    string `json:"category,omitempty" jsonschema:"Only list documents in this category, e.g. compute or sql"`
	SearchQuery string `json:"search_query,omitempty" jsonschema:"Rank documents by semantic similarity to this query"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of sections (default 50, max 500)"`
}

// ListSectionsOutput is the result of the list_sections tool.
type ListSectionsOutput struct {
	Sections   []*dbxdocs.SectionSummary `json:"sections"`
	TotalCount int                       `json:"total_count"`
	Categories []string                  `json:"categories"`
}

// GetDocumentationInput is the argument of the get_documentation tool.
type GetDocumentationInput struct {
	Paths          []string `json:"paths" jsonschema:"Document paths as returned by list_sections"`
	IncludeRelated bool     `json:"include_related,omitempty" jsonschema:"Also return paths of related documents"`
}

// GetDocumentationOutput is the result of the get_documentation tool.
type GetDocumentationOutput struct {
	Documents []*dbxdocs.DocumentationContent `json:"documents"`
}

// Server serves the list_sections and get_documentation tools.
type Server struct {
	Retrieval dbxdocs.RetrievalService

	server *sdk.Server
}

// NewServer registers the tools backed by retrieval.
func NewServer(retrieval dbxdocs.RetrievalService, version string) *Server {
	s := &Server{Retrieval: retrieval}
	s.server = sdk.NewServer(&sdk.Implementation{Name: ServerName, Version: version}, nil)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: ToolListSections,
		Description: "List Databricks documentation pages with their category and typical use cases. " +
			"Filter by category, or pass search_query to rank pages by relevance. " +
			"Use the returned paths with get_documentation.",
	}, s.ListSections)
	sdk.AddTool(s.server, &sdk.Tool{
		Name: ToolGetDocumentation,
		Description: "Return the full markdown content of Databricks documentation pages by path. " +
			"Unknown paths are skipped.",
	}, s.GetDocumentation)

	return s
}

// Run serves over transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.server.Run(ctx, transport)
}

// Connect starts a session over transport without blocking.
func (s *Server) Connect(ctx context.Context, transport sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// ListSections handles the list_sections tool.
func (s *Server) ListSections(ctx context.Context, req *sdk.CallToolRequest, in ListSectionsInput) (*sdk.CallToolResult, ListSectionsOutput, error) {
	list, err := s.Retrieval.ListSections(ctx, dbxdocs.ListSectionsRequest{
		Category:    in.Category,
		SearchQuery: in.SearchQuery,
		Limit:       in.Limit,
	})
	if err != nil {
		return nil, ListSectionsOutput{}, toolError(err)
	}

	out := ListSectionsOutput{
		Sections:   list.Sections,
		TotalCount: list.TotalCount,
		Categories: list.Categories,
	}
	if out.Sections == nil {
		out.Sections = []*dbxdocs.SectionSummary{}
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	return nil, out, nil
}

// GetDocumentation handles the get_documentation tool.
func (s *Server) GetDocumentation(ctx context.Context, req *sdk.CallToolRequest, in GetDocumentationInput) (*sdk.CallToolResult, GetDocumentationOutput, error) {
	docs, err := s.Retrieval.GetDocumentation(ctx, dbxdocs.GetDocumentationRequest{
		Paths:          in.Paths,
		IncludeRelated: in.IncludeRelated,
	})
	if err != nil {
		return nil, GetDocumentationOutput{}, toolError(err)
	}
	if docs == nil {
		docs = []*dbxdocs.DocumentationContent{}
	}
	return nil, GetDocumentationOutput{Documents: docs}, nil
}

// toolError reduces err to the message a client may see. Internal errors
// are not exposed.
func toolError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.New(dbxdocs.ErrorMessage(err))
}
