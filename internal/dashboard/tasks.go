package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// CursorMarker is the prefix shown on the selected task row.
const CursorMarker = "▸ "

// EmptyTasksText is shown when no campaign has produced a review task yet.
const EmptyTasksText = "No tasks yet. Generate some campaigns to create tasks!"

// tasksState holds the cursor over the task list. The list itself is read
// from the application snapshot on every render.
type tasksState struct {
	cursor int
}

// Update moves the cursor for up/down keys over a list of n tasks.
func (ts tasksState) Update(msg tea.KeyMsg, n int) tasksState {
	if n == 0 {
		ts.cursor = 0
		return ts
	}
	switch msg.String() {
	case "up", "k":
		ts.cursor--
		if ts.cursor < 0 {
			ts.cursor = n - 1
		}
	case "down", "j":
		ts.cursor++
		if ts.cursor >= n {
			ts.cursor = 0
		}
	}
	return ts
}

// Selected returns the cursor index clamped to a list of n tasks,
// or -1 when the list is empty.
func (ts tasksState) Selected(n int) int {
	if n == 0 {
		return -1
	}
	if ts.cursor >= n {
		return n - 1
	}
	if ts.cursor < 0 {
		return 0
	}
	return ts.cursor
}

// View renders the task list.
func (ts tasksState) View(tasks []campaign.ReviewTask, width int) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("My Tasks") + "\n\n")

	if len(tasks) == 0 {
		b.WriteString(mutedText.Render(EmptyTasksText))
		return b.String()
	}

	wrap := lipgloss.NewStyle().Width(width).PaddingLeft(lipgloss.Width(CursorMarker))
	sel := ts.Selected(len(tasks))
	for i, task := range tasks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if i == sel {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString(strings.Repeat(" ", lipgloss.Width(CursorMarker)))
		}
		b.WriteString(task.Title + " " + StatusBadge(task.Status))
		if task.Details != "" {
			b.WriteString("\n" + wrap.Render(mutedText.Render(task.Details)))
		}
	}
	return b.String()
}
