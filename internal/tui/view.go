package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 30

// styles
var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	tabStyle        = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250"))
	activeTabStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62"))
	previewTabStyle = lipgloss.NewStyle().Padding(0, 1).Italic(true).Foreground(lipgloss.Color("245"))
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	modalStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle    = lipgloss.NewStyle().Width(sidebarWidth).Border(lipgloss.NormalBorder(), false, true, false, false)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderTabBar())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), a.renderContent()))
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	if a.modal != modalNone {
		b.WriteString("\n\n")
		b.WriteString(a.renderModal())
	}
	return b.String()
}

// renderTabBar draws every open tab in registry order. The preview tab is
// italic, dirty tabs carry a dot marker.
func (a *App) renderTabBar() string {
	tabs := a.reg.Tabs()
	if len(tabs) == 0 {
		return dimStyle.Render(" no open tabs: enter previews, o opens ")
	}
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		label := tab.Title
		if tab.Icon != "" {
			label = tab.Icon + " " + label
		}
		if tab.Dirty {
			label = "● " + label
		}
		style := tabStyle
		switch {
		case tab.ID == a.reg.ActiveID():
			style = activeTabStyle
		case tab.Preview:
			style = previewTabStyle
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderSidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Requests"))
	b.WriteString("\n")
	if len(a.requests) == 0 {
		b.WriteString(dimStyle.Render("(none yet, n creates one)"))
		b.WriteString("\n")
	}
	for i, req := range a.requests {
		marker := " "
		if i == a.sidebarCursor {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %-6s %s", marker, strings.ToUpper(req.Method), req.Name)
		if len(line) > sidebarWidth-1 {
			line = line[:sidebarWidth-1]
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return sidebarStyle.Render(b.String())
}

func (a *App) renderContent() string {
	tab, ok := a.reg.Active()
	if !ok {
		return "\n  " + dimStyle.Render("Open a request from the sidebar, or H for history.")
	}
	switch tab.Source.Kind {
	case kindRequest:
		return a.renderRequestTab(tab.ID)
	case kindCollection:
		return a.renderCollectionTab(tab.Source.ID)
	case kindHistory:
		return a.renderHistoryTab()
	default:
		return dimStyle.Render("unknown tab kind " + tab.Source.Kind)
	}
}

func (a *App) renderRequestTab(tabID int) string {
	tab, ok := a.reg.Get(tabID)
	if !ok {
		return ""
	}
	req, ok := a.effectiveRequest(tab)
	if !ok {
		return dimStyle.Render("request no longer exists")
	}

	var b strings.Builder
	name := req.Name
	if tab.Dirty {
		name += " (unsaved)"
	}
	b.WriteString(" " + titleStyle.Render(name) + "\n\n")
	b.WriteString(fmt.Sprintf(" %s %s\n", strings.ToUpper(req.Method), req.URL))
	if req.Headers != "" && req.Headers != "{}" {
		b.WriteString(" headers: " + req.Headers + "\n")
	}
	if req.Body != "" {
		b.WriteString("\n" + indent(req.Body, 1) + "\n")
	}

	if a.editField != fieldNone {
		b.WriteString(fmt.Sprintf("\n edit %s: %s█\n", a.editField, a.inputBuffer))
	}

	if res, ok := a.results[tabID]; ok {
		b.WriteString(fmt.Sprintf("\n %s %d  %s  %d bytes\n",
			titleStyle.Render("→"), res.StatusCode, res.Duration.Round(time.Millisecond), res.ResponseSize))
		if res.BodyPreview != "" {
			b.WriteString("\n" + indent(res.BodyPreview, 1))
			if res.Truncated {
				b.WriteString("\n " + dimStyle.Render("(truncated)"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) renderCollectionTab(collectionID string) string {
	var name string
	for _, c := range a.collections {
		if c.ID == collectionID {
			name = c.Name
			break
		}
	}
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Collection: "+name) + "\n\n")
	n := 0
	for _, req := range a.requests {
		if req.CollectionID == nil || *req.CollectionID != collectionID {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-6s %-28s %s\n", strings.ToUpper(req.Method), req.Name, req.URL))
		n++
	}
	if n == 0 {
		b.WriteString(dimStyle.Render("  (empty)"))
	}
	return b.String()
}

func (a *App) renderHistoryTab() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("History") + "\n\n")
	if len(a.history) == 0 {
		b.WriteString(dimStyle.Render("  no requests executed yet"))
		return b.String()
	}
	for _, e := range a.history {
		status := "  -"
		if e.StatusCode != nil {
			status = fmt.Sprintf("%3d", *e.StatusCode)
		}
		line := fmt.Sprintf("  %s %s %-6s %s (%dms)",
			e.ExecutedAt.Local().Format("15:04:05"), status, e.Method, e.URL, e.DurationMS)
		if e.Error != nil {
			line += " " + dimStyle.Render("error: "+*e.Error)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderStatusBar() string {
	help := "enter preview  o open  n new  x run  e/b edit  r rename  s save  w close  </> move  tab next  ctrl+p palette  q quit"
	line := help
	if a.status != "" {
		line = a.status + "  " + dimStyle.Render(help)
	}
	return statusBarStyle.Render(line)
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmClose:
		return modalStyle.Render(fmt.Sprintf("Close %q? Unsaved changes will be lost.\n[y] Close  [n] Keep open", a.closingTitle))
	case modalPalette:
		return a.renderPalette()
	default:
		return ""
	}
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
