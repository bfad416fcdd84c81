package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/tamis/dbopen"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Recent returns the newest runs, most recent first. A limit <= 0 uses the
// default of 50; limits above 500 are clamped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT run_id, document, format, profile,
		paragraphs, prompts, fallback_used, duration_ms, error, created_at
		FROM sift_runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: recent: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var fb int
		var ts int64
		if err := rows.Scan(&r.RunID, &r.Document, &r.Format, &r.Profile,
			&r.Paragraphs, &r.Prompts, &fb, &r.DurationMs, &r.Error, &ts); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		r.FallbackUsed = fb != 0
		r.CreatedAt = time.Unix(ts, 0).UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runlog: recent: %w", err)
	}
	return runs, nil
}

// Totals aggregates all recorded runs.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(prompts), 0),
		COALESCE(SUM(fallback_used), 0),
		COALESCE(SUM(error != ''), 0)
		FROM sift_runs`).Scan(&t.Runs, &t.Prompts, &t.Fallbacks, &t.Errors)
	if err != nil {
		return Totals{}, fmt.Errorf("runlog: totals: %w", err)
	}
	return t, nil
}

// Purge deletes runs older than the given age and reports how many rows
// were removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := dbopen.Exec(ctx, s.db, `DELETE FROM sift_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runlog: purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("runlog: purge: %w", err)
	}
	return n, nil
}
