package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type listKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Add    key.Binding
	Toggle key.Binding
	Edit   key.Binding
	Delete key.Binding
	Undate key.Binding
	Unlink key.Binding
	Open   key.Binding
	Copy   key.Binding
	Sort   key.Binding
	Quit   key.Binding
}

var listKeys = listKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:    key.NewBinding(key.WithKeys("a", "i", "tab"), key.WithHelp("tab", "add")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
	Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Undate: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear date")),
	Unlink: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unlink")),
	Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open issue")),
	Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Sort, k.Open, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Sort, k.Quit},
		{k.Toggle, k.Edit, k.Delete, k.Undate, k.Unlink, k.Open, k.Copy},
	}
}
