// Package workspace owns the tab registry: which sources are open, in what
// order, which tab is active, and how the whole session round-trips through
// a persisted snapshot. All mutation goes through Registry methods; the TUI
// never touches tab state directly.
package workspace
