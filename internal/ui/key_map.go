package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the [key.Binding] values of every view.
type keyMap struct {
	pick   key.Binding
	start  key.Binding
	back   key.Binding
	cancel key.Binding
	quit   key.Binding
}

func newKeyMap(dryRun bool) keyMap {
	verb := "split"
	if dryRun {
		verb = "plan"
	}

	return keyMap{
		pick:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use as origin")),
		start:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", verb)),
		back:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "back")),
		cancel: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// bindings returns the keys shown in the help line of view.
func (k keyMap) bindings(view ViewState) []key.Binding {
	switch view {
	case PlaylistListView:
		return []key.Binding{k.pick, k.quit}
	case ConfirmView:
		return []key.Binding{k.start, k.back, k.quit}
	case SplitView:
		return []key.Binding{k.cancel}
	default:
		return []key.Binding{k.quit}
	}
}
