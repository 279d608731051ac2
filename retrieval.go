package dbxdocs

import (
	"context"
	"encoding/json"
)

// List-sections limits.
const (
	DefaultSectionLimit = 50
	MaxSectionLimit     = 500
)

// ListSectionsRequest selects documents to list.
type ListSectionsRequest struct {
	Category    string `json:"category,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`

	// Limit caps the number of sections returned. Zero means
	// DefaultSectionLimit.
	Limit int `json:"limit,omitempty"`
}

// Validate returns an error if the request is malformed.
func (r *ListSectionsRequest) Validate() error {
	if r.Limit < 0 {
		return Errorf(EINVALID, "limit must not be negative")
	}
	return nil
}

// EffectiveLimit returns the limit to apply after defaults and capping.
func (r *ListSectionsRequest) EffectiveLimit() int {
	switch {
	case r.Limit == 0:
		return DefaultSectionLimit
	case r.Limit > MaxSectionLimit:
		return MaxSectionLimit
	}
	return r.Limit
}

// SectionList is the result of a list-sections query.
type SectionList struct {
	Sections []*SectionSummary `json:"sections"`

	// TotalCount is the number of matches before truncation for listings,
	// and the number of returned sections for searches.
	TotalCount int `json:"total_count"`

	// Categories lists every category in the corpus.
	Categories []string `json:"categories"`
}

// GetDocumentationRequest names documents to return in full.
type GetDocumentationRequest struct {
	Paths          []string `json:"paths"`
	IncludeRelated bool     `json:"include_related,omitempty"`
}

// Validate returns an error if the request is malformed.
func (r *GetDocumentationRequest) Validate() error {
	if len(r.Paths) == 0 {
		return Errorf(EINVALID, "at least one path required")
	}
	for _, p := range r.Paths {
		if p == "" {
			return Errorf(EINVALID, "path must not be empty")
		}
	}
	return nil
}

// DocumentationContent is the full content of one document.
type DocumentationContent struct {
	Path       string   `json:"path"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Breadcrumb []string `json:"breadcrumb"`

	// RelatedPaths is nil unless related paths were requested.
	RelatedPaths []string `json:"related_paths,omitempty"`
}

// MarshalJSON omits related_paths only when it is nil, so a request for
// related paths that found none still carries an empty list.
func (c DocumentationContent) MarshalJSON() ([]byte, error) {
	type content DocumentationContent
	if c.RelatedPaths == nil {
		return json.Marshal(content(c))
	}
	return json.Marshal(struct {
		content
		RelatedPaths []string `json:"related_paths"`
	}{content(c), c.RelatedPaths})
}

// RetrievalService answers queries against the indexed corpus. It never
// writes to either store.
type RetrievalService interface {
	// ListSections lists documents, optionally narrowed by category or
	// ranked by similarity to a search query.
	ListSections(ctx context.Context, req ListSectionsRequest) (*SectionList, error)

	// GetDocumentation returns documents by path. Unknown paths are
	// omitted; duplicates are returned once; request order is kept.
	GetDocumentation(ctx context.Context, req GetDocumentationRequest) ([]*DocumentationContent, error)
}
