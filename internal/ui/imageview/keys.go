package imageview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Next     key.Binding
	Prev     key.Binding
	GoTo     key.Binding
	Retry    key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll down")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("d", "pgdown", "ctrl+d"), key.WithHelp("d", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("u", "pgup", "ctrl+u"), key.WithHelp("u", "page up")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Next:     key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next image")),
		Prev:     key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous image")),
		GoTo:     key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to image")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry failed")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
