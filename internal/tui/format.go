package tui

import (
	"fmt"
	"io"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// EmptyTasksText is printed when the task list is empty.
const EmptyTasksText = "No tasks yet. Generate some campaigns to create tasks!"

// FormatResult writes a generated campaign and the task list as plain text.
func FormatResult(w io.Writer, res campaign.Result, tasks []campaign.ReviewTask) {
	_, _ = fmt.Fprintln(w, "Target Audience")
	_, _ = fmt.Fprintf(w, "  %s\n", res.AudienceSegments)

	_, _ = fmt.Fprintln(w, "\nCampaign Content")
	if len(res.Content) == 0 {
		_, _ = fmt.Fprintln(w, "  (no content)")
	}
	for _, item := range res.Content {
		_, _ = fmt.Fprintf(w, "  - %s: %s\n", item.Segment, item.Copy)
	}

	if t := res.ReviewTask; t != nil {
		_, _ = fmt.Fprintln(w, "\nReview Task")
		_, _ = fmt.Fprintf(w, "  %s [%s]\n", t.Title, t.Status)
		if t.Details != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", t.Details)
		}
	}

	_, _ = fmt.Fprintln(w, "\nMy Tasks")
	if len(tasks) == 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", EmptyTasksText)
	}
	for i, t := range tasks {
		_, _ = fmt.Fprintf(w, "  %d. %s [%s]\n", i+1, t.Title, t.Status)
	}
}
