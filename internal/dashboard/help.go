package dashboard

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given screen,
// providing context-aware help bar content.
func HelpBindings(screen Screen) help.KeyMap {
	switch screen {
	case ScreenDashboard:
		return FormKeyMap()
	case ScreenTasks:
		return TaskKeyMap()
	case ScreenConfirm:
		return ConfirmKeyMap()
	default:
		return LoginKeyMap()
	}
}
