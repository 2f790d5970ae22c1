package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// SeedDefaults ensures a starter collection with example requests exists for
// new databases. It is idempotent, and the whole seed is one transaction so
// a crash mid-seed never leaves a half-populated Examples collection.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	colID := seedID("collection:Examples")
	type seedRequest struct {
		name, method, url, headers, body string
	}
	defaults := []seedRequest{
		{name: "httpbin GET", method: "GET", url: "https://httpbin.org/get", headers: "{}"},
		{name: "httpbin POST", method: "POST", url: "https://httpbin.org/post",
			headers: `{"Content-Type":"application/json"}`, body: `{"hello":"world"}`},
	}

	return WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO collections(id, name, sort_order, created_at)
		VALUES(?, ?, 0, CURRENT_TIMESTAMP)`, colID, "Examples"); err != nil {
			return err
		}
		for _, req := range defaults {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO requests(id, collection_id, name, method, url, headers, body, created_at, updated_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
				seedID("request:"+req.name), colID, req.name, req.method, req.url, req.headers, req.body); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedID derives a stable id from the seed name, so reseeding an emptied
// database produces the same rows.
func seedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
