package tui

import "github.com/charmbracelet/bubbles/key"

type keyMapGlobal struct {
	Quit    key.Binding
	Dismiss key.Binding
}

type keyMapAuth struct {
	NextField    key.Binding
	PrevField    key.Binding
	ToggleSignUp key.Binding
	Submit       key.Binding
}

type keyMapChats struct {
	CycleFocus key.Binding
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Send       key.Binding
	NewChat    key.Binding
	DeleteChat key.Binding
	Refresh    key.Binding
	Logout     key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

var keysGlobal = keyMapGlobal{
	Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	Dismiss: key.NewBinding(key.WithKeys("esc")),
}

var keysAuth = keyMapAuth{
	NextField:    key.NewBinding(key.WithKeys("tab", "down")),
	PrevField:    key.NewBinding(key.WithKeys("shift+tab", "up")),
	ToggleSignUp: key.NewBinding(key.WithKeys("ctrl+r")),
	Submit:       key.NewBinding(key.WithKeys("enter")),
}

var keysChats = keyMapChats{
	CycleFocus: key.NewBinding(key.WithKeys("tab")),
	Up:         key.NewBinding(key.WithKeys("up", "k")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	Open:       key.NewBinding(key.WithKeys("enter")),
	// alt+enter inserts a newline in the composer
	Send:       key.NewBinding(key.WithKeys("enter")),
	NewChat:    key.NewBinding(key.WithKeys("ctrl+n")),
	DeleteChat: key.NewBinding(key.WithKeys("ctrl+x")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r")),
	Logout:     key.NewBinding(key.WithKeys("ctrl+o")),
	Confirm:    key.NewBinding(key.WithKeys("y", "Y")),
	Cancel:     key.NewBinding(key.WithKeys("n", "N", "esc")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
}
