package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
)

// snapshotVersion is bumped when the persisted shape changes.
const snapshotVersion = 1

// TabState is the persisted form of a single tab. It carries plain data
// only; live Tab objects are rebuilt through a KindRegistry on restore.
type TabState struct {
	Kind     string `json:"kind"`
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	Preview  bool   `json:"preview,omitempty"`
	Dirty    bool   `json:"dirty,omitempty"`
	Closable bool   `json:"closable"`
}

// Snapshot is the persisted form of the whole registry.
type Snapshot struct {
	TabIDSequence int
	ActiveTabID   int // 0 = none
	Tabs          []TabEntry
	Order         []int
}

// TabEntry pairs a tab id with its state. It marshals as [id, state].
type TabEntry struct {
	ID    int
	State TabState
}

func (e TabEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.State})
}

func (e *TabEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("tab entry: want [id, state], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.ID); err != nil {
		return fmt.Errorf("tab entry id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.State); err != nil {
		return fmt.Errorf("tab entry state: %w", err)
	}
	return nil
}

type refEntry struct {
	SourceID string
	TabID    int
}

func (e refEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.SourceID, e.TabID})
}

func (e *refEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("index entry: want [sourceId, tabId], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.SourceID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.TabID)
}

type kindEntry struct {
	Kind string
	Refs []refEntry
}

func (e kindEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Kind, e.Refs})
}

func (e *kindEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("index kind entry: want [kind, refs], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Kind); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Refs)
}

type snapshotWire struct {
	TabIDSequence int         `json:"tabIdSequence"`
	ActiveTabID   *int        `json:"activeTabId"`
	TabsIndex     []kindEntry `json:"tabsIndex"`
	Tabs          []TabEntry  `json:"tabs"`
	TabOrder      []int       `json:"tabOrder"`
	Version       int         `json:"_version"`
}

// MarshalJSON writes the session wire shape. The source index is derived
// from the tabs so the persisted index can never disagree with the tab map.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	w := snapshotWire{
		TabIDSequence: s.TabIDSequence,
		TabsIndex:     []kindEntry{},
		Tabs:          s.Tabs,
		TabOrder:      s.Order,
		Version:       snapshotVersion,
	}
	if w.Tabs == nil {
		w.Tabs = []TabEntry{}
	}
	if w.TabOrder == nil {
		w.TabOrder = []int{}
	}
	if s.ActiveTabID != 0 {
		active := s.ActiveTabID
		w.ActiveTabID = &active
	}
	byKind := map[string]int{}
	for _, e := range s.Tabs {
		pos, ok := byKind[e.State.Kind]
		if !ok {
			pos = len(w.TabsIndex)
			byKind[e.State.Kind] = pos
			w.TabsIndex = append(w.TabsIndex, kindEntry{Kind: e.State.Kind})
		}
		w.TabsIndex[pos].Refs = append(w.TabsIndex[pos].Refs, refEntry{SourceID: e.State.SourceID, TabID: e.ID})
	}
	return json.Marshal(w)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.TabIDSequence = w.TabIDSequence
	s.ActiveTabID = 0
	if w.ActiveTabID != nil {
		s.ActiveTabID = *w.ActiveTabID
	}
	s.Tabs = w.Tabs
	s.Order = w.TabOrder
	return nil
}

// Snapshot extracts the persistable state of the registry. Tabs appear in
// display order.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		TabIDSequence: r.nextID,
		ActiveTabID:   r.activeID,
		Order:         r.Order(),
	}
	for _, id := range r.order {
		t := r.tabs[id]
		s.Tabs = append(s.Tabs, TabEntry{ID: id, State: TabState{
			Kind:     t.Source.Kind,
			SourceID: t.Source.ID,
			Title:    t.Title,
			Icon:     t.Icon,
			Preview:  t.Preview,
			Dirty:    t.Dirty,
			Closable: t.Closable,
		}})
	}
	return s
}

// Builder rebuilds a tab seed from persisted state, typically refreshing
// the title from the backing store. Returning an error drops the tab from
// the restored session.
type Builder func(state TabState) (Seed, error)

// KindRegistry maps source kinds to their tab builders.
type KindRegistry struct {
	builders map[string]Builder
}

func NewKindRegistry() *KindRegistry {
	return &KindRegistry{builders: make(map[string]Builder)}
}

func (k *KindRegistry) Register(kind string, b Builder) {
	k.builders[kind] = b
}

// Restore rebuilds a registry from a snapshot. Damage is repaired rather
// than refused: tabs with unknown kinds or failing builders are dropped,
// stale ids are filtered from the stored order, tabs missing from the
// stored order are appended, and a stale active id is cleared. The returned
// error aggregates what was dropped; the registry is usable either way.
func Restore(s Snapshot, kinds *KindRegistry) (*Registry, error) {
	r := NewRegistry()
	var dropped []error

	maxID := 0
	for _, e := range s.Tabs {
		if e.ID <= 0 {
			dropped = append(dropped, fmt.Errorf("tab %d: invalid id", e.ID))
			continue
		}
		if _, exists := r.tabs[e.ID]; exists {
			dropped = append(dropped, fmt.Errorf("tab %d: duplicate id", e.ID))
			continue
		}
		builder := kinds.builders[e.State.Kind]
		if builder == nil {
			dropped = append(dropped, fmt.Errorf("tab %d: unknown source kind %q", e.ID, e.State.Kind))
			continue
		}
		seed, err := builder(e.State)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("tab %d (%s/%s): %w", e.ID, e.State.Kind, e.State.SourceID, err))
			continue
		}
		if _, taken := r.Lookup(seed.Source); taken {
			dropped = append(dropped, fmt.Errorf("tab %d: source %s/%s already open", e.ID, seed.Source.Kind, seed.Source.ID))
			continue
		}
		tab := &Tab{
			ID:       e.ID,
			Source:   seed.Source,
			Title:    seed.Title,
			Icon:     seed.Icon,
			Preview:  e.State.Preview,
			Dirty:    e.State.Dirty,
			Closable: seed.Closable,
		}
		r.tabs[tab.ID] = tab
		r.setIndex(tab.Source, tab.ID)
		if tab.ID > maxID {
			maxID = tab.ID
		}
	}

	// Stored order filtered to live tabs, then live tabs the order missed.
	seen := make(map[int]bool, len(r.tabs))
	for _, id := range s.Order {
		if _, ok := r.tabs[id]; ok && !seen[id] {
			seen[id] = true
			r.order = append(r.order, id)
		}
	}
	for _, e := range s.Tabs {
		if _, ok := r.tabs[e.ID]; ok && !seen[e.ID] {
			seen[e.ID] = true
			r.order = append(r.order, e.ID)
		}
	}

	// At most one preview tab survives; first in display order wins.
	preview := false
	for _, id := range r.order {
		if !r.tabs[id].Preview {
			continue
		}
		if preview {
			r.tabs[id].Preview = false
			continue
		}
		preview = true
	}

	r.nextID = s.TabIDSequence
	if r.nextID <= maxID {
		r.nextID = maxID + 1
	}
	if _, ok := r.tabs[s.ActiveTabID]; ok {
		r.activeID = s.ActiveTabID
	} else if len(r.order) > 0 {
		r.activeID = r.order[0]
	}

	return r, errors.Join(dropped...)
}
