package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/askelund/restdeck/internal/config"
	"github.com/askelund/restdeck/internal/database/repository"
	"github.com/askelund/restdeck/internal/service"
	"github.com/askelund/restdeck/internal/session"
	"github.com/askelund/restdeck/internal/workspace"
)

// App ties the workspace registry, repositories, and services together.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
	store    *session.Store
	reg      *workspace.Registry
	keys     keyMap

	requests    []repository.Request
	collections []repository.Collection
	history     []repository.HistoryEntry

	sidebarCursor int
	modal         modalState
	pendingClose  *workspace.PendingClose
	closingTitle  string
	palette       paletteState
	editField     editField
	inputBuffer   string
	drafts        map[int]repository.Request
	dropBlocker   map[int]func()
	results       map[int]service.RunResult
	status        string
	width         int
	height        int
}

type Repos struct {
	Requests    *repository.RequestRepo
	Collections *repository.CollectionRepo
	History     *repository.HistoryRepo
}

type Services struct {
	Runner      *service.RunnerService
	Maintenance *service.MaintenanceService
}

type modalState string

const (
	modalNone         modalState = ""
	modalConfirmClose modalState = "confirmClose"
	modalPalette      modalState = "palette"
)

type editField string

const (
	fieldNone editField = ""
	fieldName editField = "name"
	fieldURL  editField = "url"
	fieldBody editField = "body"
)

func New(ctx context.Context, cfg config.Config, repos Repos, services Services, store *session.Store, reg *workspace.Registry) *App {
	if reg == nil {
		reg = workspace.NewRegistry()
	}
	return &App{
		ctx:         ctx,
		cfg:         cfg,
		repos:       repos,
		services:    services,
		store:       store,
		reg:         reg,
		keys:        defaultKeyMap(),
		palette:     newPaletteState(),
		drafts:      make(map[int]repository.Request),
		dropBlocker: make(map[int]func()),
		results:     make(map[int]service.RunResult),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadRequests(), a.loadCollections(), a.loadHistory())
}

// commands

func (a *App) loadRequests() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Requests.List(a.ctx, repository.RequestFilters{})
		if err != nil {
			return errMsg{err}
		}
		return requestsMsg(list)
	}
}

func (a *App) loadCollections() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Collections.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return collectionsMsg(list)
	}
}

func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.History.Recent(a.ctx, 50)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(list)
	}
}

// saveSession persists the tab session. The snapshot is extracted here, on
// the event loop, before the command runs on its own goroutine; the closure
// only marshals and writes the captured value. Write failures are reported
// on the status line and never abort the mutation that triggered them.
func (a *App) saveSession() tea.Cmd {
	snap := a.reg.Snapshot()
	name := a.sessionName()
	return func() tea.Msg {
		if err := a.store.Save(a.ctx, name, snap); err != nil {
			return errMsg{err}
		}
		return sessionSavedMsg{}
	}
}

func (a *App) sessionName() string {
	if a.cfg.Session.Name != "" {
		return a.cfg.Session.Name
	}
	return session.DefaultName
}

func (a *App) runCmd(tabID int, req repository.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Runner.Execute(a.ctx, req)
		if err != nil {
			return errMsg{err}
		}
		return runDoneMsg{tabID: tabID, res: res}
	}
}

func (a *App) saveDraftCmd(tabID int, req repository.Request) tea.Cmd {
	return func() tea.Msg {
		if err := a.repos.Requests.Upsert(a.ctx, req); err != nil {
			return errMsg{err}
		}
		return draftSavedMsg{tabID: tabID}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		switch a.modal {
		case modalConfirmClose:
			return a.handleConfirmCloseKey(m)
		case modalPalette:
			return a.handlePaletteKey(m)
		}
		if a.editField != fieldNone {
			return a.handleEditKey(m)
		}
		return a.handleMainKey(m)
	case requestsMsg:
		a.requests = []repository.Request(m)
		if a.sidebarCursor >= len(a.requests) {
			a.sidebarCursor = 0
		}
		a.refreshTabTitles()
	case collectionsMsg:
		a.collections = []repository.Collection(m)
	case historyMsg:
		a.history = []repository.HistoryEntry(m)
	case runDoneMsg:
		a.results[m.tabID] = m.res
		a.status = fmt.Sprintf("%d in %s (%d bytes)", m.res.StatusCode, m.res.Duration.Round(time.Millisecond), m.res.ResponseSize)
		return a, a.loadHistory()
	case draftSavedMsg:
		a.reg.SetDirty(m.tabID, false)
		delete(a.drafts, m.tabID)
		if drop := a.dropBlocker[m.tabID]; drop != nil {
			drop()
			delete(a.dropBlocker, m.tabID)
		}
		a.status = "request saved"
		return a, tea.Batch(a.loadRequests(), a.saveSession())
	case errMsg:
		a.status = "error: " + m.Error()
	case requestCreatedMsg:
		a.openRequest(m.req, false)
		a.status = "request created"
		return a, tea.Batch(a.loadRequests(), a.saveSession())
	case sessionSavedMsg:
		// quiet; the status line stays on whatever the user last did
	}
	return a, nil
}

func (a *App) handleMainKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Quit):
		// Best-effort final persist; a failed write must not trap the user.
		_ = a.store.Save(a.ctx, a.sessionName(), a.reg.Snapshot())
		return a, tea.Quit

	case key.Matches(m, k.Up):
		if a.sidebarCursor > 0 {
			a.sidebarCursor--
		}
	case key.Matches(m, k.Down):
		if a.sidebarCursor < len(a.requests)-1 {
			a.sidebarCursor++
		}

	case key.Matches(m, k.OpenPreview):
		if req, ok := a.selectedRequest(); ok {
			a.openRequest(req, true)
			return a, a.saveSession()
		}
	case key.Matches(m, k.OpenPinned):
		if req, ok := a.selectedRequest(); ok {
			a.openRequest(req, false)
			return a, a.saveSession()
		}

	case key.Matches(m, k.History):
		a.reg.Open(historySeed(), workspace.OpenOptions{})
		return a, tea.Batch(a.loadHistory(), a.saveSession())

	case key.Matches(m, k.NextTab):
		if a.cycleActive(1) {
			return a, a.saveSession()
		}
	case key.Matches(m, k.PrevTab):
		if a.cycleActive(-1) {
			return a, a.saveSession()
		}

	case key.Matches(m, k.MoveLeft):
		if a.reg.Move(a.reg.ActiveID(), -1) {
			return a, a.saveSession()
		}
	case key.Matches(m, k.MoveRight):
		if a.reg.Move(a.reg.ActiveID(), 1) {
			return a, a.saveSession()
		}

	case key.Matches(m, k.Pin):
		if id := a.reg.ActiveID(); id != 0 {
			a.reg.Pin(id)
			return a, a.saveSession()
		}

	case key.Matches(m, k.CloseTab):
		return a, a.closeTab(a.reg.ActiveID())

	case key.Matches(m, k.Run):
		if tab, ok := a.reg.Active(); ok && tab.Source.Kind == kindRequest {
			if req, ok := a.effectiveRequest(tab); ok {
				a.status = "running..."
				return a, a.runCmd(tab.ID, req)
			}
		}

	case key.Matches(m, k.Save):
		if tab, ok := a.reg.Active(); ok && tab.Source.Kind == kindRequest {
			if req, dirty := a.drafts[tab.ID]; dirty {
				return a, a.saveDraftCmd(tab.ID, req)
			}
			a.status = "no unsaved changes"
		}

	case key.Matches(m, k.EditURL):
		a.startEdit(fieldURL)
	case key.Matches(m, k.EditBody):
		a.startEdit(fieldBody)
	case key.Matches(m, k.Rename):
		a.startEdit(fieldName)

	case key.Matches(m, k.New):
		return a, a.createRequestCmd()

	case key.Matches(m, k.Palette):
		a.openPalette()
	}
	return a, nil
}

func (a *App) createRequestCmd() tea.Cmd {
	return func() tea.Msg {
		req := repository.Request{
			ID:      uuid.NewString(),
			Name:    "untitled request",
			Method:  "GET",
			URL:     "https://",
			Headers: "{}",
		}
		if err := a.repos.Requests.Upsert(a.ctx, req); err != nil {
			return errMsg{err}
		}
		return requestCreatedMsg{req: req}
	}
}

func (a *App) handleConfirmCloseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		pending := a.pendingClose
		a.modal, a.pendingClose, a.closingTitle = modalNone, nil, ""
		if pending != nil {
			id := pending.Tab()
			pending.Confirm()
			delete(a.results, id)
			a.status = "tab closed"
			return a, a.saveSession()
		}
	case "n", "N", "esc":
		pending := a.pendingClose
		a.modal, a.pendingClose, a.closingTitle = modalNone, nil, ""
		if pending != nil {
			pending.Cancel()
		}
		a.status = "close cancelled"
	}
	return a, nil
}

func (a *App) handleEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.editField = fieldNone
		a.inputBuffer = ""
	case tea.KeyEnter:
		field := a.editField
		text := a.inputBuffer
		a.editField = fieldNone
		a.inputBuffer = ""
		a.commitEdit(field, text)
		return a, a.saveSession()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

// tab plumbing

func (a *App) openRequest(req repository.Request, preview bool) {
	seed := workspace.Seed{
		Source:   workspace.Ref{Kind: kindRequest, ID: req.ID},
		Title:    req.Name,
		Icon:     methodIcon(req.Method),
		Closable: true,
	}
	a.reg.Open(seed, workspace.OpenOptions{Preview: preview})
}

func (a *App) closeTab(id int) tea.Cmd {
	if id == 0 {
		return nil
	}
	tab, ok := a.reg.Get(id)
	if !ok || !tab.Closable {
		return nil
	}
	closed, pending := a.reg.Close(id, false)
	if closed {
		delete(a.results, id)
		a.status = "tab closed"
		return a.saveSession()
	}
	if pending != nil {
		a.modal = modalConfirmClose
		a.pendingClose = pending
		a.closingTitle = tab.Title
	}
	return nil
}

func (a *App) cycleActive(delta int) bool {
	order := a.reg.Order()
	if len(order) == 0 {
		return false
	}
	pos := 0
	for i, id := range order {
		if id == a.reg.ActiveID() {
			pos = i
			break
		}
	}
	pos = (pos + delta + len(order)) % len(order)
	_, ok := a.reg.SetActive(order[pos])
	return ok
}

// effectiveRequest resolves what would run for a request tab: the unsaved
// draft when one exists, the stored request otherwise.
func (a *App) effectiveRequest(tab workspace.Tab) (repository.Request, bool) {
	if draft, ok := a.drafts[tab.ID]; ok {
		return draft, true
	}
	for _, req := range a.requests {
		if req.ID == tab.Source.ID {
			return req, true
		}
	}
	return repository.Request{}, false
}

func (a *App) selectedRequest() (repository.Request, bool) {
	if a.sidebarCursor < 0 || a.sidebarCursor >= len(a.requests) {
		return repository.Request{}, false
	}
	return a.requests[a.sidebarCursor], true
}

func (a *App) startEdit(field editField) {
	tab, ok := a.reg.Active()
	if !ok || tab.Source.Kind != kindRequest {
		return
	}
	req, ok := a.effectiveRequest(tab)
	if !ok {
		return
	}
	a.editField = field
	switch field {
	case fieldName:
		a.inputBuffer = req.Name
	case fieldURL:
		a.inputBuffer = req.URL
	case fieldBody:
		a.inputBuffer = req.Body
	}
}

func (a *App) commitEdit(field editField, text string) {
	tab, ok := a.reg.Active()
	if !ok || tab.Source.Kind != kindRequest {
		return
	}
	req, ok := a.effectiveRequest(tab)
	if !ok {
		return
	}
	switch field {
	case fieldName:
		req.Name = strings.TrimSpace(text)
		a.reg.SetTitle(tab.ID, req.Name)
	case fieldURL:
		req.URL = strings.TrimSpace(text)
	case fieldBody:
		req.Body = text
	default:
		return
	}
	a.drafts[tab.ID] = req
	a.reg.SetDirty(tab.ID, true)
	// Editing promotes a preview tab into a real one.
	a.reg.Pin(tab.ID)
	if _, registered := a.dropBlocker[tab.ID]; !registered {
		id := tab.ID
		a.dropBlocker[id] = a.reg.RegisterCloseBlocker(id, workspace.CloseBlocker{
			Confirm: func() {
				delete(a.drafts, id)
				delete(a.dropBlocker, id)
			},
		})
	}
	a.status = "unsaved changes (s to save)"
}

// refreshTabTitles re-syncs request tab titles after a reload, except for
// tabs with unsaved drafts, which keep their draft title.
func (a *App) refreshTabTitles() {
	byID := make(map[string]repository.Request, len(a.requests))
	for _, req := range a.requests {
		byID[req.ID] = req
	}
	for _, tab := range a.reg.Tabs() {
		if tab.Source.Kind != kindRequest {
			continue
		}
		if _, hasDraft := a.drafts[tab.ID]; hasDraft {
			continue
		}
		if req, ok := byID[tab.Source.ID]; ok && req.Name != tab.Title {
			a.reg.SetTitle(tab.ID, req.Name)
		}
	}
}

// messages

type requestsMsg []repository.Request

type collectionsMsg []repository.Collection

type historyMsg []repository.HistoryEntry

type errMsg struct{ error }

type sessionSavedMsg struct{}

type runDoneMsg struct {
	tabID int
	res   service.RunResult
}

type draftSavedMsg struct {
	tabID int
}

type requestCreatedMsg struct {
	req repository.Request
}

func methodIcon(method string) string {
	switch strings.ToUpper(method) {
	case "GET":
		return "↓"
	case "POST":
		return "↑"
	case "DELETE":
		return "✕"
	default:
		return "∙"
	}
}
