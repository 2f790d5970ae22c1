package repository

import (
	"context"
	"database/sql"
	"strings"
)

// RequestFilters defines list filters.
type RequestFilters struct {
	CollectionID string
	Search       string
}

// RequestRepo handles saved requests.
type RequestRepo struct {
	db *sql.DB
}

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

func (r *RequestRepo) Upsert(ctx context.Context, req Request) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO requests(id, collection_id, name, method, url, headers, body, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 collection_id=excluded.collection_id, name=excluded.name, method=excluded.method,
	 url=excluded.url, headers=excluded.headers, body=excluded.body, updated_at=CURRENT_TIMESTAMP;
	`,
		req.ID, req.CollectionID, req.Name, req.Method, req.URL, req.Headers, req.Body)
	return err
}

func (r *RequestRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	return err
}

// Get returns nil when the request does not exist.
func (r *RequestRepo) Get(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, collection_id, name, method, url, headers, body, created_at, updated_at
	FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepo) List(ctx context.Context, f RequestFilters) ([]Request, error) {
	var where []string
	var args []interface{}

	if f.CollectionID != "" {
		where = append(where, "collection_id = ?")
		args = append(args, f.CollectionID)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR url LIKE ?)")
		args = append(args, "%"+f.Search+"%", "%"+f.Search+"%")
	}

	query := "SELECT id, collection_id, name, method, url, headers, body, created_at, updated_at FROM requests"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.CollectionID, &req.Name, &req.Method, &req.URL,
		&req.Headers, &req.Body, &req.CreatedAt, &req.UpdatedAt)
	return req, err
}
