package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

const maxRecentRuns = 500

// RunStore handles database operations for harvest runs
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun inserts the audit row of one harvest
func (s *RunStore) SaveRun(ctx context.Context, run *model.HarvestRun) error {
	query := `
		INSERT INTO harvest_runs (id, username, mode, start_cursor, final_cursor,
		                          comment_count, page_count, stop_reason, upstream_error,
		                          elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Username,
		run.Mode,
		run.StartCursor,
		run.FinalCursor,
		run.Count,
		run.Pages,
		run.StopReason,
		run.UpstreamErr,
		run.ElapsedMS,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save harvest run for %s: %w", run.Username, err)
	}

	return nil
}

// Recent returns the latest runs, newest first, optionally for one user
func (s *RunStore) Recent(ctx context.Context, username string, limit int) ([]model.HarvestRun, error) {
	if limit <= 0 || limit > maxRecentRuns {
		limit = maxRecentRuns
	}

	query := `
		SELECT id, username, mode, start_cursor, final_cursor, comment_count,
		       page_count, stop_reason, upstream_error, elapsed_ms, created_at
		FROM harvest_runs
		WHERE ($1 = '' OR username = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query harvest runs: %w", err)
	}
	defer rows.Close()

	runs := []model.HarvestRun{}
	for rows.Next() {
		var r model.HarvestRun
		if err := rows.Scan(
			&r.ID,
			&r.Username,
			&r.Mode,
			&r.StartCursor,
			&r.FinalCursor,
			&r.Count,
			&r.Pages,
			&r.StopReason,
			&r.UpstreamErr,
			&r.ElapsedMS,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan harvest run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Summary aggregates all recorded runs
func (s *RunStore) Summary(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{}

	totalsQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(comment_count), 0),
			COUNT(DISTINCT username),
			COALESCE(AVG(elapsed_ms), 0)
		FROM harvest_runs
	`
	err := s.db.QueryRowContext(ctx, totalsQuery).Scan(
		&summary.TotalRuns,
		&summary.TotalComments,
		&summary.DistinctUsers,
		&summary.AverageMS,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate run totals: %w", err)
	}

	topQuery := `
		SELECT username, SUM(comment_count) AS total
		FROM harvest_runs
		GROUP BY username
		ORDER BY total DESC
		LIMIT 1
	`
	err = s.db.QueryRowContext(ctx, topQuery).Scan(&summary.TopUser, &summary.TopUserCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find top user: %w", err)
	}

	return summary, nil
}
