package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// stripANSI removes styling so assertions see rendered text only.
func stripANSI(s string) string {
	return ansi.Strip(s)
}

// containsPlainText reports whether the unstyled s contains sub.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch runs cmd and collects its messages, expanding one level of
// tea.BatchMsg. Spinner ticks are dropped so the spinner never loops.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		if m := c(); !isSpinnerTick(m) {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

func isSpinnerTick(msg tea.Msg) bool {
	_, ok := msg.(spinner.TickMsg)
	return ok
}
