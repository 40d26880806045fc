package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// MinContentWidth is the narrowest width content is wrapped to.
const MinContentWidth = 20

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedText    = lipgloss.NewStyle().Foreground(mutedColor)
	errorText    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	okText       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	activeTab = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(accentColor).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(accentColor)
	inactiveTab = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(mutedColor).
			Border(lipgloss.HiddenBorder(), false, false, true, false)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "15"}).
			Background(accentColor)
	disabledButtonStyle = buttonStyle.
				Background(lipgloss.AdaptiveColor{Light: "250", Dark: "238"}).
				Foreground(mutedColor)
)

// statusColors maps review task status to badge colour.
var statusColors = map[campaign.TaskStatus]lipgloss.AdaptiveColor{
	campaign.TaskPending:   {Light: "3", Dark: "11"},
	campaign.TaskCompleted: {Light: "2", Dark: "10"},
}

// StatusBadge returns a styled task status label.
// Unknown statuses are shown as-is in a muted colour.
func StatusBadge(status campaign.TaskStatus) string {
	label := string(status)
	if label == "" {
		label = "unknown"
	}
	color, ok := statusColors[status]
	if !ok {
		color = mutedColor
	}
	return lipgloss.NewStyle().Foreground(color).Render("[" + label + "]")
}

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor)
}

// ContentWidth returns the wrap width for a terminal of totalWidth,
// leaving room for borders and padding.
func ContentWidth(totalWidth int) int {
	w := totalWidth - 4
	if w < MinContentWidth {
		return MinContentWidth
	}
	return w
}
