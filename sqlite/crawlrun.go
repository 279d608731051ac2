package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/dbxdocs"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ dbxdocs.CrawlRunService = (*CrawlRunService)(nil)

// CrawlRunService implements dbxdocs.CrawlRunService using SQLite.
type CrawlRunService struct {
	db *DB
}

// NewCrawlRunService creates a new CrawlRunService.
func NewCrawlRunService(db *DB) *CrawlRunService {
	return &CrawlRunService{db: db}
}

// CreateCrawlRun stores a new run.
func (s *CrawlRunService) CreateCrawlRun(ctx context.Context, run *dbxdocs.CrawlRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = dbxdocs.CrawlRunning
	}
	run.StartedAt = run.StartedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_runs (id, mode, status, error, started_at, finished_at,
			visited, fetched, skipped, changed, indexed, failed, pruned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Mode), string(run.Status), run.Error,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Visited, run.Fetched, run.Skipped, run.Changed, run.Indexed, run.Failed, run.Pruned)

	return err
}

// UpdateCrawlRun replaces the stored run with the same ID.
func (s *CrawlRunService) UpdateCrawlRun(ctx context.Context, run *dbxdocs.CrawlRun) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE crawl_runs
		SET status = ?, error = ?, finished_at = ?,
			visited = ?, fetched = ?, skipped = ?, changed = ?, indexed = ?, failed = ?, pruned = ?
		WHERE id = ?
	`, string(run.Status), run.Error, formatTime(run.FinishedAt),
		run.Visited, run.Fetched, run.Skipped, run.Changed, run.Indexed, run.Failed, run.Pruned,
		run.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dbxdocs.Errorf(dbxdocs.ENOTFOUND, "crawl run not found: %s", run.ID)
	}
	return nil
}

// FindCrawlRuns returns the most recent runs first.
func (s *CrawlRunService) FindCrawlRuns(ctx context.Context, limit int) ([]*dbxdocs.CrawlRun, error) {
	query := `
		SELECT id, mode, status, error, started_at, finished_at,
			visited, fetched, skipped, changed, indexed, failed, pruned
		FROM crawl_runs
		ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*dbxdocs.CrawlRun
	for rows.Next() {
		var run dbxdocs.CrawlRun
		var mode, status, startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &mode, &status, &run.Error, &startedAt, &finishedAt,
			&run.Visited, &run.Fetched, &run.Skipped, &run.Changed, &run.Indexed, &run.Failed, &run.Pruned); err != nil {
			return nil, err
		}
		run.Mode = dbxdocs.CrawlMode(mode)
		run.Status = dbxdocs.CrawlStatus(status)
		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
