package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepo stores named workspace session payloads.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Put(ctx context.Context, name string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO sessions(name, payload, updated_at)
	VALUES(?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, updated_at=CURRENT_TIMESTAMP;
	`, name, payload)
	return err
}

// Get returns nil when no session with the given name exists.
func (r *SessionRepo) Get(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM sessions WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *SessionRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	return err
}

// PruneOlderThan removes sessions not written since the cutoff.
func (r *SessionRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
