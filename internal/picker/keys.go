package picker

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	More    key.Binding
	Less    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
		More:    key.NewBinding(key.WithKeys("+", "=", "right", "l"), key.WithHelp("+/→", "n+1")),
		Less:    key.NewBinding(key.WithKeys("-", "left", "h"), key.WithHelp("-/←", "n-1")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "split")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.More, k.Less, k.Confirm, k.Quit}
}
