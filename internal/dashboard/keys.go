package dashboard

import "github.com/charmbracelet/bubbles/key"

// loginKeys holds key bindings for the sign-in screen.
type loginKeys struct {
	Login key.Binding
	Quit  key.Binding
}

// ShortHelp returns the login bindings for the help bar.
func (k loginKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Login, k.Quit}
}

// FullHelp returns the login bindings grouped for expanded help.
func (k loginKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Login, k.Quit}}
}

// formKeys holds key bindings for the dashboard form. Printable keys go to
// the brief input, so quitting needs ctrl+c here.
type formKeys struct {
	Generate   key.Binding
	SwitchView key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

// ShortHelp returns the form bindings for the help bar.
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.SwitchView, k.ScrollUp, k.ScrollDown, k.Quit}
}

// FullHelp returns the form bindings grouped for expanded help.
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.SwitchView},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

// taskKeys holds key bindings for the task list.
type taskKeys struct {
	Up         key.Binding
	Down       key.Binding
	Complete   key.Binding
	SwitchView key.Binding
	Quit       key.Binding
}

// ShortHelp returns the task list bindings for the help bar.
func (k taskKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Complete, k.SwitchView, k.Quit}
}

// FullHelp returns the task list bindings grouped for expanded help.
func (k taskKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Complete},
		{k.SwitchView, k.Quit},
	}
}

// confirmKeys holds key bindings for the completion confirmation.
type confirmKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns the confirmation bindings for the help bar.
func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns the confirmation bindings grouped for expanded help.
func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// LoginKeyMap returns the key bindings for the sign-in screen.
func LoginKeyMap() loginKeys {
	return loginKeys{
		Login: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter", "login"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// FormKeyMap returns the key bindings for the dashboard form.
func FormKeyMap() formKeys {
	return formKeys{
		Generate: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "generate"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "my tasks"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// TaskKeyMap returns the key bindings for the task list.
func TaskKeyMap() taskKeys {
	return taskKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mark as completed"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "dashboard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ConfirmKeyMap returns the key bindings for the completion confirmation.
func ConfirmKeyMap() confirmKeys {
	return confirmKeys{
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
