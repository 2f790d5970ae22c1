package workspace

// Ref identifies the logical content behind a tab: a source kind plus a
// kind-specific id (e.g. {"request", "<uuid>"}).
type Ref struct {
	Kind string
	ID   string
}

// Zero reports whether the ref is empty.
func (r Ref) Zero() bool { return r.Kind == "" && r.ID == "" }

// Tab is a single workspace tab. Tabs are owned by the Registry; callers
// receive copies and mutate through Registry methods.
type Tab struct {
	ID       int
	Source   Ref
	Title    string
	Icon     string
	Preview  bool
	Dirty    bool
	Closable bool
}

// Seed describes a tab to open.
type Seed struct {
	Source   Ref
	Title    string
	Icon     string
	Closable bool
}

// OpenOptions controls Open behaviour.
type OpenOptions struct {
	// Preview opens the tab as a transient single-slot tab. If a preview
	// tab already exists its id and order position are reused.
	Preview bool
}
