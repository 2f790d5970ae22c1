package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/restdeck/internal/database"
	"github.com/askelund/restdeck/internal/database/repository"
)

// bodyPreviewLimit caps how much of a response body is kept for display.
const bodyPreviewLimit = 64 * 1024

// RunResult summarizes one request execution.
type RunResult struct {
	StatusCode   int
	Duration     time.Duration
	ResponseSize int64
	BodyPreview  string
	Truncated    bool
}

// RunnerService executes saved requests and records history rows.
type RunnerService struct {
	History *repository.HistoryRepo
	Client  *http.Client
}

// Execute sends the request and records the outcome. A transport failure is
// still recorded as a history row before being returned.
func (s *RunnerService) Execute(ctx context.Context, req repository.Request) (RunResult, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), req.URL, body)
	if err != nil {
		return RunResult{}, fmt.Errorf("build request: %w", err)
	}
	headers, err := decodeHeaders(req.Headers)
	if err != nil {
		return RunResult{}, fmt.Errorf("decode headers: %w", err)
	}
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		s.record(ctx, req, nil, elapsed, 0, err)
		return RunResult{Duration: elapsed}, fmt.Errorf("execute %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	preview, size, truncated, readErr := readPreview(resp.Body)
	s.record(ctx, req, &resp.StatusCode, elapsed, size, readErr)
	if readErr != nil {
		return RunResult{StatusCode: resp.StatusCode, Duration: elapsed}, fmt.Errorf("read response: %w", readErr)
	}

	return RunResult{
		StatusCode:   resp.StatusCode,
		Duration:     elapsed,
		ResponseSize: size,
		BodyPreview:  preview,
		Truncated:    truncated,
	}, nil
}

func (s *RunnerService) record(ctx context.Context, req repository.Request, status *int, elapsed time.Duration, size int64, execErr error) {
	if s.History == nil {
		return
	}
	entry := repository.HistoryEntry{
		ID:           uuid.NewString(),
		Method:       strings.ToUpper(req.Method),
		URL:          req.URL,
		StatusCode:   status,
		DurationMS:   elapsed.Milliseconds(),
		ResponseSize: size,
		ExecutedAt:   database.Now(),
	}
	if req.ID != "" {
		id := req.ID
		entry.RequestID = &id
	}
	if execErr != nil {
		msg := execErr.Error()
		entry.Error = &msg
	}
	// History is best-effort; a failed insert must not fail the run.
	_ = s.History.Add(ctx, entry)
}

func decodeHeaders(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readPreview(r io.Reader) (preview string, size int64, truncated bool, err error) {
	data, err := io.ReadAll(io.LimitReader(r, bodyPreviewLimit))
	if err != nil {
		return "", int64(len(data)), false, err
	}
	size = int64(len(data))
	// Drain the remainder so size reflects the full body.
	rest, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", size, false, err
	}
	size += rest
	return string(data), size, rest > 0, nil
}
