package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// renderResult renders a generated campaign for the results viewport.
func renderResult(res campaign.Result, width int) string {
	wrap := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	var b strings.Builder

	fmt.Fprintf(&b, "%s  Campaign generated\n", okText.Render("✓"))

	b.WriteString("\n" + headingStyle.Render("Target Audience") + "\n")
	if res.AudienceSegments == "" {
		b.WriteString(wrap.Render(mutedText.Render("(none)")) + "\n")
	} else {
		b.WriteString(wrap.Render(res.AudienceSegments) + "\n")
	}

	b.WriteString("\n" + headingStyle.Render("Campaign Content") + "\n")
	if len(res.Content) == 0 {
		b.WriteString(wrap.Render(mutedText.Render("(no content)")) + "\n")
	}
	for i, item := range res.Content {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(wrap.Render(titleStyle.Render(item.Segment)) + "\n")
		b.WriteString(wrap.Render(item.Copy) + "\n")
	}

	if t := res.ReviewTask; t != nil {
		b.WriteString("\n" + headingStyle.Render("Review Task") + "\n")
		b.WriteString(wrap.Render(t.Title+" "+StatusBadge(t.Status)) + "\n")
		if t.Details != "" {
			b.WriteString(wrap.Render(mutedText.Render(t.Details)) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
