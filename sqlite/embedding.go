package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/dbxdocs"
)

// Compile-time interface verification.
var _ dbxdocs.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService implements dbxdocs.EmbeddingService using SQLite.
// Vectors are stored as little-endian float32 blobs and ranked by exact
// cosine similarity in process, which is fast enough for a corpus of a few
// thousand documents.
type EmbeddingService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(db *DB) *EmbeddingService {
	return &EmbeddingService{db: db, Now: time.Now}
}

// UpsertEmbedding stores e, replacing any entry at e.Path.
func (s *EmbeddingService) UpsertEmbedding(ctx context.Context, e *dbxdocs.Embedding) error {
	if e.Path == "" {
		return dbxdocs.Errorf(dbxdocs.EINVALID, "embedding path required")
	}
	if e.Model == "" {
		return dbxdocs.Errorf(dbxdocs.EINVALID, "embedding model required")
	}
	if len(e.Vector) == 0 {
		return dbxdocs.Errorf(dbxdocs.EINVALID, "embedding vector required")
	}
	if e.IndexedAt.IsZero() {
		e.IndexedAt = s.Now()
	}
	e.IndexedAt = e.IndexedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (path, title, category, subcategory, model, dimensions, vector, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			subcategory = excluded.subcategory,
			model = excluded.model,
			dimensions = excluded.dimensions,
			vector = excluded.vector,
			content_hash = excluded.content_hash,
			indexed_at = excluded.indexed_at
	`, e.Path, e.Title, e.Category, e.Subcategory, e.Model, len(e.Vector), encodeVector(e.Vector),
		e.ContentHash, formatTime(e.IndexedAt))

	return err
}

// FindEmbeddingByPath returns the entry at path.
func (s *EmbeddingService) FindEmbeddingByPath(ctx context.Context, path string) (*dbxdocs.Embedding, error) {
	var e dbxdocs.Embedding
	var blob []byte
	var indexedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT path, title, category, subcategory, model, vector, content_hash, indexed_at
		FROM embeddings
		WHERE path = ?
	`, path).Scan(&e.Path, &e.Title, &e.Category, &e.Subcategory, &e.Model, &blob, &e.ContentHash, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dbxdocs.Errorf(dbxdocs.ENOTFOUND, "embedding not found: %s", path)
	}
	if err != nil {
		return nil, err
	}

	if e.Vector, err = decodeVector(blob); err != nil {
		return nil, err
	}
	if e.IndexedAt, err = parseRFC3339(indexedAt, "indexed_at"); err != nil {
		return nil, err
	}
	return &e, nil
}

// SearchEmbeddings ranks stored entries by cosine similarity to vector.
// Entries whose dimensions differ from the query are ignored. Ties are
// broken by path so results are deterministic.
func (s *EmbeddingService) SearchEmbeddings(ctx context.Context, vector []float32, opts dbxdocs.SearchOptions) ([]*dbxdocs.SearchResult, error) {
	if len(vector) == 0 {
		return nil, dbxdocs.Errorf(dbxdocs.EINVALID, "query vector required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = dbxdocs.DefaultSearchLimit
	}

	var query strings.Builder
	args := []any{len(vector)}
	query.WriteString("SELECT path, title, category, subcategory, vector FROM embeddings WHERE dimensions = ?")
	if opts.Model != "" {
		query.WriteString(" AND model = ?")
		args = append(args, opts.Model)
	}
	if opts.Category != "" {
		query.WriteString(" AND category = ?")
		args = append(args, opts.Category)
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude[p] = true
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*dbxdocs.SearchResult
	for rows.Next() {
		var r dbxdocs.SearchResult
		var blob []byte
		if err := rows.Scan(&r.Path, &r.Title, &r.Category, &r.Subcategory, &blob); err != nil {
			return nil, err
		}
		if exclude[r.Path] {
			continue
		}
		v, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		r.Score = cosine(vector, v)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteEmbedding removes the entry at path.
func (s *EmbeddingService) DeleteEmbedding(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE path = ?", path)
	return err
}

// FindEmbeddingPaths returns the paths with an entry for model, or every
// path when model is empty.
func (s *EmbeddingService) FindEmbeddingPaths(ctx context.Context, model string) ([]string, error) {
	query := "SELECT path FROM embeddings"
	var args []any
	if model != "" {
		query += " WHERE model = ?"
		args = append(args, model)
	}
	query += " ORDER BY path ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// CountEmbeddings returns the number of stored entries.
func (s *EmbeddingService) CountEmbeddings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
