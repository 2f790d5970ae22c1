package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askelund/restdeck/internal/database"
	"github.com/askelund/restdeck/internal/database/repository"
)

func newHistoryRepo(t *testing.T) *repository.HistoryRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewHistoryRepo(db)
}

func TestExecuteRecordsHistoryRow(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	history := newHistoryRepo(t)
	runner := &RunnerService{History: history, Client: srv.Client()}

	req := repository.Request{
		ID:      "req-1",
		Name:    "create thing",
		Method:  "post",
		URL:     srv.URL + "/things",
		Headers: `{"Authorization":"Bearer tok"}`,
		Body:    `{"name":"x"}`,
	}
	res, err := runner.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, `{"ok":true}`, res.BodyPreview)
	require.False(t, res.Truncated)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, `{"name":"x"}`, gotBody)

	rows, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "POST", rows[0].Method)
	require.NotNil(t, rows[0].StatusCode)
	require.Equal(t, http.StatusCreated, *rows[0].StatusCode)
	require.NotNil(t, rows[0].RequestID)
	require.Equal(t, "req-1", *rows[0].RequestID)
	require.Nil(t, rows[0].Error)
}

func TestExecuteTransportFailureStillRecorded(t *testing.T) {
	t.Parallel()

	history := newHistoryRepo(t)
	runner := &RunnerService{History: history, Client: &http.Client{Timeout: time.Second}}

	req := repository.Request{ID: "req-2", Method: "GET", URL: "http://127.0.0.1:1/unreachable"}
	_, err := runner.Execute(context.Background(), req)
	require.Error(t, err)

	rows, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].StatusCode)
	require.NotNil(t, rows[0].Error)
}

func TestExecuteRejectsBadHeaders(t *testing.T) {
	t.Parallel()

	runner := &RunnerService{}
	req := repository.Request{Method: "GET", URL: "http://example.invalid", Headers: "not-json"}
	_, err := runner.Execute(context.Background(), req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode headers")
}

func TestExecuteTruncatesLargeBodies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", bodyPreviewLimit+100)))
	}))
	defer srv.Close()

	runner := &RunnerService{Client: srv.Client()}
	res, err := runner.Execute(context.Background(), repository.Request{Method: "GET", URL: srv.URL})
	require.NoError(t, err)
	require.True(t, res.Truncated)
	require.Len(t, res.BodyPreview, bodyPreviewLimit)
	require.Equal(t, int64(bodyPreviewLimit+100), res.ResponseSize)
}
