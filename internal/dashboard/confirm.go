package dashboard

import (
	"fmt"
	"strings"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// confirmState holds the task awaiting a "mark as completed" confirmation.
type confirmState struct {
	index int
	task  campaign.ReviewTask
}

// View renders the confirmation screen.
func (cs confirmState) View() string {
	var b strings.Builder
	b.WriteString("Mark task as completed?\n")
	fmt.Fprintf(&b, "\n  %s %s\n", cs.task.Title, StatusBadge(cs.task.Status))
	if cs.task.Details != "" {
		fmt.Fprintf(&b, "\n  %s\n", mutedText.Render(cs.task.Details))
	}
	b.WriteString("\n  [Enter] Confirm   [Esc] Cancel")
	return b.String()
}
