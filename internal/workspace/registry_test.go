package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reqSeed(id, title string) Seed {
	return Seed{Source: Ref{Kind: "request", ID: id}, Title: title, Closable: true}
}

func TestOpenDeduplicatesBySource(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := r.Open(reqSeed("a", "GET /users"), OpenOptions{})
	r.Open(reqSeed("b", "POST /users"), OpenOptions{})
	require.Equal(t, 2, r.Len())

	again := r.Open(reqSeed("a", "GET /users"), OpenOptions{})
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, 2, r.Len(), "reopening a source must not add a tab")
	require.Equal(t, first.ID, r.ActiveID(), "reopening only activates")
}

func TestTabIDsNeverReused(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	closed, pending := r.Close(a.ID, false)
	require.True(t, closed)
	require.Nil(t, pending)

	b := r.Open(reqSeed("a", "A"), OpenOptions{})
	require.Greater(t, b.ID, a.ID)
}

func TestCloseActivePicksSamePositionThenPrevious(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	b := r.Open(reqSeed("b", "B"), OpenOptions{})
	c := r.Open(reqSeed("c", "C"), OpenOptions{})

	// Closing a middle active tab activates the tab that slides into its slot.
	r.SetActive(b.ID)
	closed, _ := r.Close(b.ID, false)
	require.True(t, closed)
	require.Equal(t, c.ID, r.ActiveID())
	require.Equal(t, []int{a.ID, c.ID}, r.Order())

	// Closing the last active tab falls back to the previous one.
	closed, _ = r.Close(c.ID, false)
	require.True(t, closed)
	require.Equal(t, a.ID, r.ActiveID())

	// Closing the only tab leaves nothing active.
	closed, _ = r.Close(a.ID, false)
	require.True(t, closed)
	require.Equal(t, 0, r.ActiveID())
	require.Equal(t, 0, r.Len())
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	b := r.Open(reqSeed("b", "B"), OpenOptions{})
	r.SetActive(b.ID)

	closed, _ := r.Close(a.ID, false)
	require.True(t, closed)
	require.Equal(t, b.ID, r.ActiveID())
}

func TestCloseDirtyTabNeedsConfirmation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	r.SetDirty(a.ID, true)

	closed, pending := r.Close(a.ID, false)
	require.False(t, closed)
	require.NotNil(t, pending)
	require.Equal(t, a.ID, pending.Tab())
	require.Equal(t, 1, r.Len(), "prompting must not mutate")

	pending.Confirm()
	require.Equal(t, 0, r.Len())
	_, ok := r.Lookup(Ref{Kind: "request", ID: "a"})
	require.False(t, ok)
}

func TestCloseCancelLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})

	var confirmed, cancelled bool
	r.RegisterCloseBlocker(a.ID, CloseBlocker{
		Confirm: func() { confirmed = true },
		Cancel:  func() { cancelled = true },
	})

	closed, pending := r.Close(a.ID, false)
	require.False(t, closed)
	require.NotNil(t, pending)

	pending.Cancel()
	require.True(t, cancelled)
	require.False(t, confirmed)
	require.Equal(t, 1, r.Len())
	require.Equal(t, a.ID, r.ActiveID())

	// Resolving twice is a no-op.
	pending.Confirm()
	require.Equal(t, 1, r.Len())
}

func TestCloseBlockerConfirmHookRuns(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})

	var confirmed bool
	r.RegisterCloseBlocker(a.ID, CloseBlocker{Confirm: func() { confirmed = true }})

	_, pending := r.Close(a.ID, false)
	require.NotNil(t, pending)
	pending.Confirm()
	require.True(t, confirmed)
	require.Equal(t, 0, r.Len())
}

func TestForceCloseSkipsPrompt(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	r.SetDirty(a.ID, true)
	r.RegisterCloseBlocker(a.ID, CloseBlocker{Cancel: func() { t.Fatal("cancel hook must not run on force close") }})

	closed, pending := r.Close(a.ID, true)
	require.True(t, closed)
	require.Nil(t, pending)
	require.Equal(t, 0, r.Len())
}

func TestUnregisterCloseBlocker(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	remove := r.RegisterCloseBlocker(a.ID, CloseBlocker{})
	remove()
	remove()

	closed, pending := r.Close(a.ID, false)
	require.True(t, closed)
	require.Nil(t, pending)
}

func TestPreviewReusesIDAndEvictsOldIndexEntry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Open(reqSeed("pinned", "Pinned"), OpenOptions{})
	p1 := r.Open(reqSeed("p1", "Preview 1"), OpenOptions{Preview: true})
	require.Equal(t, p1.ID, r.Preview())

	p2 := r.Open(reqSeed("p2", "Preview 2"), OpenOptions{Preview: true})
	require.Equal(t, p1.ID, p2.ID, "preview open reuses the preview tab id")
	require.Equal(t, 2, r.Len())

	_, ok := r.Lookup(Ref{Kind: "request", ID: "p1"})
	require.False(t, ok, "old preview source must leave the index")
	id, ok := r.Lookup(Ref{Kind: "request", ID: "p2"})
	require.True(t, ok)
	require.Equal(t, p2.ID, id)

	// The reused id keeps its order slot.
	require.Equal(t, 1, func() int {
		for i, v := range r.Order() {
			if v == p2.ID {
				return i
			}
		}
		return -1
	}())
}

func TestPinClearsPreview(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	p := r.Open(reqSeed("p", "P"), OpenOptions{Preview: true})
	r.Pin(p.ID)
	require.Equal(t, 0, r.Preview())

	// A later preview open allocates a fresh tab.
	q := r.Open(reqSeed("q", "Q"), OpenOptions{Preview: true})
	require.NotEqual(t, p.ID, q.ID)
	require.Equal(t, 2, r.Len())
}

func TestDirtyingAPreviewTabBlocksReplacement(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	p := r.Open(reqSeed("p", "P"), OpenOptions{Preview: true})
	r.SetDirty(p.ID, true)

	// Replacement resets the dirty flag along with the source.
	q := r.Open(reqSeed("q", "Q"), OpenOptions{Preview: true})
	require.Equal(t, p.ID, q.ID)
	require.False(t, q.Dirty)
}

func TestReorderAppliesPermutation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	b := r.Open(reqSeed("b", "B"), OpenOptions{})
	c := r.Open(reqSeed("c", "C"), OpenOptions{})

	require.NoError(t, r.Reorder([]int{c.ID, a.ID, b.ID}))
	require.Equal(t, []int{c.ID, a.ID, b.ID}, r.Order())
}

func TestReorderRejectsCorruptPermutations(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	b := r.Open(reqSeed("b", "B"), OpenOptions{})

	require.Error(t, r.Reorder([]int{a.ID}), "short order")
	require.Error(t, r.Reorder([]int{a.ID, a.ID}), "duplicate id")
	require.Error(t, r.Reorder([]int{a.ID, 999}), "unknown id")
	require.Equal(t, []int{a.ID, b.ID}, r.Order(), "rejected reorder must not mutate")
}

func TestMoveClampsAtEdges(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	b := r.Open(reqSeed("b", "B"), OpenOptions{})

	require.False(t, r.Move(a.ID, -1))
	require.True(t, r.Move(a.ID, 1))
	require.Equal(t, []int{b.ID, a.ID}, r.Order())
	require.False(t, r.Move(a.ID, 1))
	require.False(t, r.Move(999, 1))
}

func TestSetActiveUnknownIDClearsActive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Open(reqSeed("a", "A"), OpenOptions{})
	require.Equal(t, a.ID, r.ActiveID())

	_, ok := r.SetActive(999)
	require.False(t, ok)
	require.Equal(t, 0, r.ActiveID())

	tab, ok := r.SetActive(a.ID)
	require.True(t, ok)
	require.Equal(t, "A", tab.Title)
	require.Equal(t, a.ID, r.ActiveID())
}

func TestOrderMatchesTabSet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ids := map[int]bool{}
	for _, k := range []string{"a", "b", "c", "d"} {
		tab := r.Open(reqSeed(k, k), OpenOptions{})
		ids[tab.ID] = true
	}
	r.Open(reqSeed("p", "P"), OpenOptions{Preview: true})

	closed, _ := r.Close(r.Order()[1], false)
	require.True(t, closed)

	order := r.Order()
	seen := map[int]bool{}
	for _, id := range order {
		require.False(t, seen[id], "order must not contain duplicates")
		seen[id] = true
		_, ok := r.Get(id)
		require.True(t, ok, "order id %d must resolve to a tab", id)
	}
	require.Len(t, order, r.Len())
	require.Len(t, r.Tabs(), r.Len())
}
