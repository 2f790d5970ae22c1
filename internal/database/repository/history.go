package repository

import (
	"context"
	"database/sql"
	"time"
)

// HistoryRepo handles execution history.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Add(ctx context.Context, e HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO history(id, request_id, method, url, status_code, duration_ms, response_size, error, executed_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.RequestID, e.Method, e.URL, e.StatusCode, e.DurationMS, e.ResponseSize, e.Error, e.ExecutedAt)
	return err
}

func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, request_id, method, url, status_code, duration_ms, response_size, error, executed_at
	FROM history ORDER BY executed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Method, &e.URL, &e.StatusCode,
			&e.DurationMS, &e.ResponseSize, &e.Error, &e.ExecutedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneOlderThan removes entries executed before the cutoff and returns how
// many were deleted.
func (r *HistoryRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE executed_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
