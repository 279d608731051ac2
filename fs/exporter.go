// Package fs exports the content store as a tree of markdown files.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/dbxdocs"
	"gopkg.in/yaml.v3"
)

// exportBatch is the number of documents read from the store at a time.
const exportBatch = 200

// Exporter writes stored documents to disk as markdown with YAML
// frontmatter.
type Exporter struct {
	Documents dbxdocs.DocumentService
}

// NewExporter returns an Exporter reading from documents.
func NewExporter(documents dbxdocs.DocumentService) *Exporter {
	return &Exporter{Documents: documents}
}

// Export writes every stored document under dir and returns the number
// written. Files are staged in a sibling ".tmp" directory that replaces dir
// only once all documents are written, so a failed export leaves the
// previous one intact.
func (e *Exporter) Export(ctx context.Context, dir string) (int, error) {
	dir = filepath.Clean(dir)
	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return 0, err
	}

	n, err := e.write(ctx, tmp)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return 0, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, dir); err != nil {
		return 0, err
	}
	return n, nil
}

func (e *Exporter) write(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	n := 0
	for offset := 0; ; offset += exportBatch {
		docs, err := e.Documents.FindDocuments(ctx, dbxdocs.DocumentFilter{
			SortBy: dbxdocs.SortByPath,
			Offset: offset,
			Limit:  exportBatch,
		})
		if err != nil {
			return n, err
		}
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return n, err
			}
			if err := writeDocument(dir, doc); err != nil {
				return n, err
			}
			n++
		}
		if len(docs) < exportBatch {
			return n, nil
		}
	}
}

func writeDocument(dir string, doc *dbxdocs.Document) error {
	rel, err := DocumentFile(doc.Path)
	if err != nil {
		return err
	}
	content, err := FormatDocument(doc)
	if err != nil {
		return err
	}

	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0o644)
}

// DocumentFile maps a document path to a relative file path.
//
//	/aws/en/compute -> aws/en/compute.md
//	/               -> index.md
func DocumentFile(p string) (string, error) {
	if strings.Contains(p, "..") {
		return "", dbxdocs.Errorf(dbxdocs.EINVALID, "path escapes export directory: %q", p)
	}
	p = strings.TrimPrefix(dbxdocs.NormalizePath(p), "/")
	if p == "" {
		return "index.md", nil
	}
	return filepath.FromSlash(p) + ".md", nil
}

type frontmatter struct {
	Source      string   `yaml:"source"`
	Title       string   `yaml:"title"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	Breadcrumb  []string `yaml:"breadcrumb,omitempty"`
	Related     []string `yaml:"related,omitempty"`
	Fetched     string   `yaml:"fetched"`
}

// FormatDocument renders doc as markdown preceded by YAML frontmatter.
func FormatDocument(doc *dbxdocs.Document) (string, error) {
	fm, err := yaml.Marshal(frontmatter{
		Source:      doc.URL,
		Title:       doc.Title,
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
		Breadcrumb:  doc.Breadcrumb,
		Related:     doc.RelatedPaths,
		Fetched:     doc.FetchedAt.UTC().Format(time.DateOnly),
	})
	if err != nil {
		return "", fmt.Errorf("frontmatter for %s: %w", doc.Path, err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(doc.Content)
	return b.String(), nil
}
