package service

import (
	"context"
	"time"

	"github.com/askelund/restdeck/internal/database/repository"
)

// MaintenanceService trims stored history and stale named sessions.
type MaintenanceService struct {
	History  *repository.HistoryRepo
	Sessions *repository.SessionRepo
}

// PruneResult reports what a maintenance pass removed.
type PruneResult struct {
	HistoryRows int64
	Sessions    int64
}

// Prune removes history and session rows older than the retention window.
// A zero or negative retention disables pruning.
func (s *MaintenanceService) Prune(ctx context.Context, retention time.Duration) (PruneResult, error) {
	var res PruneResult
	if retention <= 0 {
		return res, nil
	}
	cutoff := time.Now().UTC().Add(-retention)

	if s.History != nil {
		n, err := s.History.PruneOlderThan(ctx, cutoff)
		if err != nil {
			return res, err
		}
		res.HistoryRows = n
	}
	if s.Sessions != nil {
		n, err := s.Sessions.PruneOlderThan(ctx, cutoff)
		if err != nil {
			return res, err
		}
		res.Sessions = n
	}
	return res, nil
}
