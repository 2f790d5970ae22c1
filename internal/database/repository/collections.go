package repository

import (
	"context"
	"database/sql"
)

// CollectionRepo handles collections.
type CollectionRepo struct {
	db *sql.DB
}

func NewCollectionRepo(db *sql.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) Upsert(ctx context.Context, c Collection) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO collections(id, name, sort_order, created_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name, sort_order=excluded.sort_order;
	`, c.ID, c.Name, c.SortOrder)
	return err
}

func (r *CollectionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	return err
}

// Get returns nil when the collection does not exist.
func (r *CollectionRepo) Get(ctx context.Context, id string) (*Collection, error) {
	var c Collection
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, sort_order, created_at FROM collections WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepo) List(ctx context.Context) ([]Collection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, sort_order, created_at FROM collections ORDER BY sort_order ASC, name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
