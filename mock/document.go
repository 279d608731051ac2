package mock

import (
	"context"

	"github.com/fwojciec/dbxdocs"
)

var _ dbxdocs.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of dbxdocs.DocumentService.
type DocumentService struct {
	FindDocumentByPathFn func(ctx context.Context, path string) (*dbxdocs.Document, error)
	FindDocumentsFn      func(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error)
	CountDocumentsFn     func(ctx context.Context, filter dbxdocs.DocumentFilter) (int, error)
	FindCategoriesFn     func(ctx context.Context) ([]string, error)
	FindDocumentPathsFn  func(ctx context.Context) ([]string, error)
	PutDocumentFn        func(ctx context.Context, doc *dbxdocs.Document) error
	MarkIndexedFn        func(ctx context.Context, path, hash string) error
	DeleteDocumentFn     func(ctx context.Context, path string) error
}

func (s *DocumentService) FindDocumentByPath(ctx context.Context, path string) (*dbxdocs.Document, error) {
	return s.FindDocumentByPathFn(ctx, path)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter dbxdocs.DocumentFilter) ([]*dbxdocs.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) CountDocuments(ctx context.Context, filter dbxdocs.DocumentFilter) (int, error) {
	return s.CountDocumentsFn(ctx, filter)
}

func (s *DocumentService) FindCategories(ctx context.Context) ([]string, error) {
	return s.FindCategoriesFn(ctx)
}

func (s *DocumentService) FindDocumentPaths(ctx context.Context) ([]string, error) {
	return s.FindDocumentPathsFn(ctx)
}

func (s *DocumentService) PutDocument(ctx context.Context, doc *dbxdocs.Document) error {
	return s.PutDocumentFn(ctx, doc)
}

func (s *DocumentService) MarkIndexed(ctx context.Context, path, hash string) error {
	return s.MarkIndexedFn(ctx, path, hash)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, path string) error {
	return s.DeleteDocumentFn(ctx, path)
}
