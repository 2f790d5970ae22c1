package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askelund/restdeck/internal/database/repository"
)

const paletteLimit = 8

// paletteState is the fuzzy tab/request switcher.
type paletteState struct {
	input   textinput.Model
	matches []repository.Request
	cursor  int
}

func newPaletteState() paletteState {
	ti := textinput.New()
	ti.Placeholder = "jump to request"
	ti.CharLimit = 120
	ti.Width = 40
	return paletteState{input: ti}
}

func (a *App) openPalette() {
	a.modal = modalPalette
	a.palette.input.SetValue("")
	a.palette.input.Focus()
	a.palette.cursor = 0
	a.palette.matches = rankRequests(a.requests, "")
}

func (a *App) handlePaletteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		a.palette.input.Blur()
		return a, nil
	case "up", "ctrl+k":
		if a.palette.cursor > 0 {
			a.palette.cursor--
		}
		return a, nil
	case "down", "ctrl+j":
		if a.palette.cursor < len(a.palette.matches)-1 {
			a.palette.cursor++
		}
		return a, nil
	case "enter":
		a.modal = modalNone
		a.palette.input.Blur()
		if a.palette.cursor < len(a.palette.matches) {
			a.openRequest(a.palette.matches[a.palette.cursor], true)
			return a, a.saveSession()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.palette.input, cmd = a.palette.input.Update(m)
	a.palette.matches = rankRequests(a.requests, a.palette.input.Value())
	if a.palette.cursor >= len(a.palette.matches) {
		a.palette.cursor = 0
	}
	return a, cmd
}

func (a *App) renderPalette() string {
	var b strings.Builder
	b.WriteString(a.palette.input.View())
	b.WriteString("\n")
	for i, req := range a.palette.matches {
		marker := " "
		if i == a.palette.cursor {
			marker = "▶"
		}
		b.WriteString(marker + " " + strings.ToUpper(req.Method) + " " + req.Name + "\n")
	}
	if len(a.palette.matches) == 0 {
		b.WriteString(dimStyle.Render("no matches"))
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// rankRequests orders requests by how well they match the query: substring
// hits first (earlier is better), then by edit distance of the name.
func rankRequests(requests []repository.Request, query string) []repository.Request {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]repository.Request, len(requests))
		copy(out, requests)
		if len(out) > paletteLimit {
			out = out[:paletteLimit]
		}
		return out
	}

	type scored struct {
		req   repository.Request
		score int
	}
	ranked := make([]scored, 0, len(requests))
	for _, req := range requests {
		name := strings.ToLower(req.Name)
		score := 0
		if idx := strings.Index(name, query); idx >= 0 {
			score = idx
		} else {
			score = 100 + levenshtein.ComputeDistance(query, name)
		}
		ranked = append(ranked, scored{req: req, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })

	out := make([]repository.Request, 0, paletteLimit)
	for _, s := range ranked {
		if len(out) == paletteLimit {
			break
		}
		out = append(out, s.req)
	}
	return out
}
