package workspace

import "fmt"

// CloseBlocker gates closing a tab until the user confirms. Confirm and
// Cancel run on the corresponding branch of the close flow; either may be
// nil.
type CloseBlocker struct {
	Confirm func()
	Cancel  func()
}

// PendingClose is returned when a close needs user confirmation. Exactly one
// of Confirm or Cancel must be called to resolve it.
type PendingClose struct {
	registry *Registry
	tabID    int
	blocker  *CloseBlocker
	done     bool
}

// Tab returns the id of the tab awaiting confirmation.
func (p *PendingClose) Tab() int { return p.tabID }

// Confirm runs the blocker's confirm hook and removes the tab.
func (p *PendingClose) Confirm() {
	if p.done {
		return
	}
	p.done = true
	if p.blocker != nil && p.blocker.Confirm != nil {
		p.blocker.Confirm()
	}
	p.registry.remove(p.tabID)
}

// Cancel runs the blocker's cancel hook and leaves the registry untouched.
func (p *PendingClose) Cancel() {
	if p.done {
		return
	}
	p.done = true
	if p.blocker != nil && p.blocker.Cancel != nil {
		p.blocker.Cancel()
	}
}

// Registry is the single owner of workspace tab state. It is not safe for
// concurrent use; the event loop is the only writer.
type Registry struct {
	nextID   int
	tabs     map[int]*Tab
	index    map[string]map[string]int // kind -> source id -> tab id
	order    []int
	activeID int // 0 = none
	blockers map[int]*CloseBlocker
}

// NewRegistry returns an empty registry. Tab ids start at 1 and are never
// reused.
func NewRegistry() *Registry {
	return &Registry{
		nextID:   1,
		tabs:     make(map[int]*Tab),
		index:    make(map[string]map[string]int),
		blockers: make(map[int]*CloseBlocker),
	}
}

// Len returns the number of open tabs.
func (r *Registry) Len() int { return len(r.order) }

// Order returns a copy of the tab order, left to right.
func (r *Registry) Order() []int {
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns a copy of the tab with the given id.
func (r *Registry) Get(id int) (Tab, bool) {
	t, ok := r.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return *t, true
}

// Lookup resolves a source ref to its tab id.
func (r *Registry) Lookup(ref Ref) (int, bool) {
	id, ok := r.index[ref.Kind][ref.ID]
	return id, ok
}

// Active returns the active tab, if any.
func (r *Registry) Active() (Tab, bool) {
	return r.Get(r.activeID)
}

// ActiveID returns the active tab id, 0 if none.
func (r *Registry) ActiveID() int { return r.activeID }

// Preview returns the id of the preview tab, 0 if none.
func (r *Registry) Preview() int {
	for _, id := range r.order {
		if r.tabs[id].Preview {
			return id
		}
	}
	return 0
}

// Open opens a tab for the seeded source. If a tab for the source already
// exists it is only activated. A preview open reuses the existing preview
// tab's id and order slot, evicting the old source's index entry; any other
// new tab appends to the end of the order.
func (r *Registry) Open(seed Seed, opts OpenOptions) Tab {
	if id, ok := r.Lookup(seed.Source); ok {
		r.activeID = id
		return *r.tabs[id]
	}

	var tab *Tab
	if prev := r.Preview(); opts.Preview && prev != 0 {
		tab = r.tabs[prev]
		r.dropIndex(tab.Source)
		tab.Source = seed.Source
		tab.Title = seed.Title
		tab.Icon = seed.Icon
		tab.Closable = seed.Closable
		tab.Dirty = false
	} else {
		tab = &Tab{
			ID:       r.nextID,
			Source:   seed.Source,
			Title:    seed.Title,
			Icon:     seed.Icon,
			Preview:  opts.Preview,
			Closable: seed.Closable,
		}
		r.nextID++
		r.tabs[tab.ID] = tab
		r.order = append(r.order, tab.ID)
	}
	r.setIndex(tab.Source, tab.ID)
	r.activeID = tab.ID
	return *tab
}

// Close closes a tab. When the tab is dirty or has a registered blocker and
// force is false, no state changes; the returned PendingClose must be
// resolved by the caller. Otherwise the tab is removed immediately.
func (r *Registry) Close(id int, force bool) (closed bool, pending *PendingClose) {
	tab, ok := r.tabs[id]
	if !ok {
		return false, nil
	}
	blocker := r.blockers[id]
	if !force && (tab.Dirty || blocker != nil) {
		return false, &PendingClose{registry: r, tabID: id, blocker: blocker}
	}
	r.remove(id)
	return true, nil
}

// SetActive activates the tab with the given id and returns it. An unknown
// id clears the active state.
func (r *Registry) SetActive(id int) (Tab, bool) {
	t, ok := r.tabs[id]
	if !ok {
		r.activeID = 0
		return Tab{}, false
	}
	r.activeID = id
	return *t, true
}

// Reorder replaces the tab order. The new order must be a permutation of
// the current one; anything else is rejected to keep the order and the tab
// map in lockstep.
func (r *Registry) Reorder(order []int) error {
	if len(order) != len(r.order) {
		return fmt.Errorf("reorder: got %d ids, have %d tabs", len(order), len(r.order))
	}
	seen := make(map[int]bool, len(order))
	for _, id := range order {
		if _, ok := r.tabs[id]; !ok {
			return fmt.Errorf("reorder: unknown tab id %d", id)
		}
		if seen[id] {
			return fmt.Errorf("reorder: duplicate tab id %d", id)
		}
		seen[id] = true
	}
	r.order = append(r.order[:0], order...)
	return nil
}

// Move shifts the tab one slot left or right (delta -1 or +1), clamped at
// the edges.
func (r *Registry) Move(id int, delta int) bool {
	pos := r.position(id)
	if pos < 0 {
		return false
	}
	to := pos + delta
	if to < 0 || to >= len(r.order) {
		return false
	}
	r.order[pos], r.order[to] = r.order[to], r.order[pos]
	return true
}

// SetDirty flags unsaved changes on a tab.
func (r *Registry) SetDirty(id int, dirty bool) {
	if t, ok := r.tabs[id]; ok {
		t.Dirty = dirty
	}
}

// Pin clears the preview flag, turning a transient tab into a regular one.
func (r *Registry) Pin(id int) {
	if t, ok := r.tabs[id]; ok {
		t.Preview = false
	}
}

// SetTitle updates a tab's display title.
func (r *Registry) SetTitle(id int, title string) {
	if t, ok := r.tabs[id]; ok {
		t.Title = title
	}
}

// RegisterCloseBlocker installs a confirmation gate for a tab. The returned
// func removes it; removing twice is harmless.
func (r *Registry) RegisterCloseBlocker(id int, b CloseBlocker) func() {
	r.blockers[id] = &b
	return func() {
		if r.blockers[id] == &b {
			delete(r.blockers, id)
		}
	}
}

// Tabs returns copies of all open tabs in display order.
func (r *Registry) Tabs() []Tab {
	out := make([]Tab, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.tabs[id])
	}
	return out
}

func (r *Registry) position(id int) int {
	for i, v := range r.order {
		if v == id {
			return i
		}
	}
	return -1
}

func (r *Registry) setIndex(ref Ref, id int) {
	m := r.index[ref.Kind]
	if m == nil {
		m = make(map[string]int)
		r.index[ref.Kind] = m
	}
	m[ref.ID] = id
}

func (r *Registry) dropIndex(ref Ref) {
	if m := r.index[ref.Kind]; m != nil {
		delete(m, ref.ID)
		if len(m) == 0 {
			delete(r.index, ref.Kind)
		}
	}
}

// remove deletes the tab and, when it was active, activates the tab that
// slid into its order position, falling back to the previous tab.
func (r *Registry) remove(id int) {
	tab, ok := r.tabs[id]
	if !ok {
		return
	}
	pos := r.position(id)
	r.dropIndex(tab.Source)
	delete(r.tabs, id)
	delete(r.blockers, id)
	if pos < 0 {
		return
	}
	r.order = append(r.order[:pos], r.order[pos+1:]...)

	if r.activeID != id {
		return
	}
	if len(r.order) == 0 {
		r.activeID = 0
		return
	}
	if pos >= len(r.order) {
		pos = len(r.order) - 1
	}
	r.activeID = r.order[pos]
}
