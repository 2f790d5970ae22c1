package tui

import (
	"context"
	"fmt"

	"github.com/askelund/restdeck/internal/workspace"
)

// Source kinds known to the workspace. The persisted session stores these
// names, so they are part of the on-disk format.
const (
	kindRequest    = "request"
	kindCollection = "collection"
	kindHistory    = "history"
)

const historySourceID = "log"

// NewKinds builds the source-kind constructor registry used to restore a
// persisted session. Builders refresh titles from the backing store and
// reject sources that no longer exist, which drops their tabs on restore.
func NewKinds(ctx context.Context, repos Repos) *workspace.KindRegistry {
	kinds := workspace.NewKindRegistry()

	kinds.Register(kindRequest, func(state workspace.TabState) (workspace.Seed, error) {
		req, err := repos.Requests.Get(ctx, state.SourceID)
		if err != nil {
			return workspace.Seed{}, err
		}
		if req == nil {
			return workspace.Seed{}, fmt.Errorf("request %s no longer exists", state.SourceID)
		}
		return workspace.Seed{
			Source:   workspace.Ref{Kind: kindRequest, ID: req.ID},
			Title:    req.Name,
			Icon:     state.Icon,
			Closable: true,
		}, nil
	})

	kinds.Register(kindCollection, func(state workspace.TabState) (workspace.Seed, error) {
		col, err := repos.Collections.Get(ctx, state.SourceID)
		if err != nil {
			return workspace.Seed{}, err
		}
		if col == nil {
			return workspace.Seed{}, fmt.Errorf("collection %s no longer exists", state.SourceID)
		}
		return workspace.Seed{
			Source:   workspace.Ref{Kind: kindCollection, ID: col.ID},
			Title:    col.Name,
			Icon:     state.Icon,
			Closable: true,
		}, nil
	})

	kinds.Register(kindHistory, func(state workspace.TabState) (workspace.Seed, error) {
		return historySeed(), nil
	})

	return kinds
}

func historySeed() workspace.Seed {
	return workspace.Seed{
		Source:   workspace.Ref{Kind: kindHistory, ID: historySourceID},
		Title:    "History",
		Icon:     "⌛",
		Closable: true,
	}
}
