package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	OpenPreview key.Binding
	OpenPinned  key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	CloseTab    key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	Pin         key.Binding
	Run         key.Binding
	Save        key.Binding
	EditURL     key.Binding
	EditBody    key.Binding
	Rename      key.Binding
	History     key.Binding
	Palette     key.Binding
	New         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		OpenPreview: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
		OpenPinned:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		NextTab:     key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "prev tab")),
		CloseTab:    key.NewBinding(key.WithKeys("ctrl+w", "w"), key.WithHelp("w", "close tab")),
		MoveLeft:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "move tab left")),
		MoveRight:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "move tab right")),
		Pin:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin tab")),
		Run:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "run request")),
		Save:        key.NewBinding(key.WithKeys("ctrl+s", "s"), key.WithHelp("s", "save request")),
		EditURL:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit url")),
		EditBody:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "edit body")),
		Rename:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename request")),
		History:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		Palette:     key.NewBinding(key.WithKeys("ctrl+p", "/"), key.WithHelp("ctrl+p", "palette")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new request")),
	}
}
