package repository

import "time"

// Collection represents a collection row.
type Collection struct {
	ID        string
	Name      string
	SortOrder int
	CreatedAt time.Time
}

// Request represents a saved request row. Headers is a JSON object of
// header name to value.
type Request struct {
	ID           string
	CollectionID *string
	Name         string
	Method       string
	URL          string
	Headers      string
	Body         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HistoryEntry represents one execution of a request.
type HistoryEntry struct {
	ID           string
	RequestID    *string
	Method       string
	URL          string
	StatusCode   *int
	DurationMS   int64
	ResponseSize int64
	Error        *string
	ExecutedAt   time.Time
}

// SessionRow is a persisted workspace session payload.
type SessionRow struct {
	Name      string
	Payload   []byte
	UpdatedAt time.Time
}
