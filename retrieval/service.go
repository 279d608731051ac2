// Package retrieval answers list-sections and get-documentation queries over
// the content store and the vector index.
package retrieval

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fwojciec/dbxdocs"
	"golang.org/x/sync/singleflight"
)

// RelatedLimit is the number of nearest neighbours used when a document has
// no stored related paths.
const RelatedLimit = 5

var _ dbxdocs.RetrievalService = (*Service)(nil)

// Service implements dbxdocs.RetrievalService. It only reads from its
// stores and is safe for concurrent use.
type Service struct {
	Documents dbxdocs.DocumentService
	Index     dbxdocs.Indexer

	searches singleflight.Group
}

// NewService returns a Service reading from documents and index.
func NewService(documents dbxdocs.DocumentService, index dbxdocs.Indexer) *Service {
	return &Service{Documents: documents, Index: index}
}

// ListSections lists documents from the content store, or ranks them by
// similarity when a search query is given.
func (s *Service) ListSections(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	limit := req.EffectiveLimit()

	categories, err := s.Documents.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	if req.SearchQuery != "" {
		sections, err := s.search(ctx, req.SearchQuery, req.Category, limit)
		if err != nil {
			return nil, err
		}
		if err := s.countChildren(ctx, sections); err != nil {
			return nil, err
		}
		return &dbxdocs.SectionList{
			Sections:   sections,
			TotalCount: len(sections),
			Categories: categories,
		}, nil
	}

	filter := dbxdocs.DocumentFilter{SortBy: dbxdocs.SortByCategory, Limit: limit}
	if req.Category != "" {
		filter.Category = &req.Category
	}
	docs, err := s.Documents.FindDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	total, err := s.Documents.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	sections := make([]*dbxdocs.SectionSummary, 0, len(docs))
	for _, doc := range docs {
		sections = append(sections, dbxdocs.NewSectionSummary(doc))
	}
	if err := s.countChildren(ctx, sections); err != nil {
		return nil, err
	}
	return &dbxdocs.SectionList{
		Sections:   sections,
		TotalCount: total,
		Categories: categories,
	}, nil
}

// countChildren fills ChildCount from the stored paths.
func (s *Service) countChildren(ctx context.Context, sections []*dbxdocs.SectionSummary) error {
	if len(sections) == 0 {
		return nil
	}
	paths, err := s.Documents.FindDocumentPaths(ctx)
	if err != nil {
		return fmt.Errorf("listing paths: %w", err)
	}
	counts := dbxdocs.CountChildren(paths)
	for _, sec := range sections {
		sec.ChildCount = counts[sec.Path]
	}
	return nil
}

// search runs a similarity query. Identical concurrent queries share one
// call to the index. The shared call outlives any single caller's
// cancellation; each caller stops waiting when its own context ends.
func (s *Service) search(ctx context.Context, query, category string, limit int) ([]*dbxdocs.SectionSummary, error) {
	key := query + "|" + category + "|" + strconv.Itoa(limit)
	shared := context.WithoutCancel(ctx)
	ch := s.searches.DoChan(key, func() (any, error) {
		return s.Index.Search(shared, query, dbxdocs.SearchOptions{Limit: limit, Category: category})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("searching: %w", res.Err)
	}

	results := res.Val.([]*dbxdocs.SearchResult)
	sections := make([]*dbxdocs.SectionSummary, 0, len(results))
	for _, r := range results {
		sections = append(sections, &dbxdocs.SectionSummary{
			Title:       r.Title,
			Path:        r.Path,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			UseCases:    dbxdocs.UseCases(r.Category),
		})
	}
	return sections, nil
}

// GetDocumentation returns full documents in request order. Unknown paths
// are skipped and repeated paths are returned once.
func (s *Service) GetDocumentation(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(req.Paths))
	out := make([]*dbxdocs.DocumentationContent, 0, len(req.Paths))
	for _, p := range req.Paths {
		path := dbxdocs.NormalizePath(p)
		if seen[path] {
			continue
		}
		seen[path] = true

		doc, err := s.Documents.FindDocumentByPath(ctx, path)
		if dbxdocs.ErrorCode(err) == dbxdocs.ENOTFOUND {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("finding %s: %w", path, err)
		}

		content := &dbxdocs.DocumentationContent{
			Path:       doc.Path,
			Title:      doc.Title,
			Content:    doc.Content,
			Breadcrumb: doc.Breadcrumb,
		}
		if content.Breadcrumb == nil {
			content.Breadcrumb = []string{}
		}
		if req.IncludeRelated {
			related, err := s.related(ctx, doc)
			if err != nil {
				return nil, err
			}
			content.RelatedPaths = related
		}
		out = append(out, content)
	}
	return out, nil
}

// related returns the stored related paths of doc, falling back to its
// nearest neighbours in the vector index. The result is never nil.
func (s *Service) related(ctx context.Context, doc *dbxdocs.Document) ([]string, error) {
	if len(doc.RelatedPaths) > 0 {
		return doc.RelatedPaths, nil
	}
	paths := []string{}
	if s.Index == nil {
		return paths, nil
	}
	results, err := s.Index.Similar(ctx, doc.Path, RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("finding related to %s: %w", doc.Path, err)
	}
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	return paths, nil
}
