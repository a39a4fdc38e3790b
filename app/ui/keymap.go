package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	FocusInput    key.Binding
	FocusSidebar  key.Binding
	SubmitMessage key.Binding
	NewChat       key.Binding
	PrevChat      key.Binding
	NextChat      key.Binding
	OpenChat      key.Binding
	DeleteChat    key.Binding
	ClearAll      key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Quit          key.Binding
}

var DefaultKeyMap = KeyMap{
	FocusInput:    key.NewBinding(key.WithKeys("tab", "i")),
	FocusSidebar:  key.NewBinding(key.WithKeys("tab", "esc")),
	SubmitMessage: key.NewBinding(key.WithKeys("enter")),
	NewChat:       key.NewBinding(key.WithKeys("n", "ctrl+n")),
	PrevChat:      key.NewBinding(key.WithKeys("up", "k")),
	NextChat:      key.NewBinding(key.WithKeys("down", "j")),
	OpenChat:      key.NewBinding(key.WithKeys("enter")),
	DeleteChat:    key.NewBinding(key.WithKeys("d", "delete")),
	ClearAll:      key.NewBinding(key.WithKeys("x")),
	ScrollUp:      key.NewBinding(key.WithKeys("pgup")),
	ScrollDown:    key.NewBinding(key.WithKeys("pgdown")),
	Quit:          key.NewBinding(key.WithKeys("ctrl+c")),
}
