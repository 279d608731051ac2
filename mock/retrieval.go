package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.RetrievalService = (*RetrievalService)(nil)

// RetrievalService is a mock implementation of dbxdocs.RetrievalService.
type RetrievalService struct {
	ListSectionsFn     func(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error)
	GetDocumentationFn func(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error)
}

func (s *RetrievalService) ListSections(ctx context.Context, req dbxdocs.ListSectionsRequest) (*dbxdocs.SectionList, error) {
	return s.ListSectionsFn(ctx, req)
}

func (s *RetrievalService) GetDocumentation(ctx context.Context, req dbxdocs.GetDocumentationRequest) ([]*dbxdocs.DocumentationContent, error) {
	return s.GetDocumentationFn(ctx, req)
}
