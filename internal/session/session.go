// Package session persists the workspace tab registry to the sessions table
// and restores it on startup. Failures on the read path degrade to an empty
// session rather than aborting launch.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/askelund/restdeck/internal/database/repository"
	"github.com/askelund/restdeck/internal/workspace"
)

// DefaultName is the fixed key the workspace session is stored under.
const DefaultName = "workspace"

// Store adapts the tab registry to the session repository.
type Store struct {
	repo *repository.SessionRepo
}

func NewStore(repo *repository.SessionRepo) *Store {
	return &Store{repo: repo}
}

// Save serializes a registry snapshot under the given name. Callers extract
// the snapshot on the event loop and hand over the value; the store never
// touches a live registry, so the write can run on any goroutine.
func (s *Store) Save(ctx context.Context, name string, snap workspace.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", name, err)
	}
	if err := s.repo.Put(ctx, name, payload); err != nil {
		return fmt.Errorf("store session %q: %w", name, err)
	}
	return nil
}

// Load restores a registry from the named session. A missing session yields
// an empty registry and no error. Unreadable payloads and tabs that fail to
// rebuild also yield a usable (possibly empty) registry; the returned error
// exists to be reported, not to abort startup.
func (s *Store) Load(ctx context.Context, name string, kinds *workspace.KindRegistry) (*workspace.Registry, error) {
	payload, err := s.repo.Get(ctx, name)
	if err != nil {
		return workspace.NewRegistry(), fmt.Errorf("read session %q: %w", name, err)
	}
	if payload == nil {
		return workspace.NewRegistry(), nil
	}

	var snap workspace.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return workspace.NewRegistry(), fmt.Errorf("decode session %q: %w", name, err)
	}

	reg, err := workspace.Restore(snap, kinds)
	if err != nil {
		return reg, fmt.Errorf("restore session %q: %w", name, err)
	}
	return reg, nil
}
