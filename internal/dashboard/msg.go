// Package dashboard implements the interactive campaign manager TUI:
// sign-in screen, brief form with the latest result, and the review task
// list. All state lives in state.App; this package only renders it and
// turns key presses and async completions into App calls.
// Separate from internal/tui which handles the one-shot run display.
package dashboard

import (
	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/health"
)

// Screen is what the dashboard currently renders.
type Screen int

const (
	ScreenLogin     Screen = iota // Signed out.
	ScreenDashboard               // Brief form and latest result.
	ScreenTasks                   // Review task list.
	ScreenConfirm                 // Completion confirmation over the task list.
)

// User-facing notices.
const (
	NoticeBlankBrief = "Please enter a campaign brief"
	NoticeFailed     = "Failed to generate campaign. Please try again."
)

// --- tea.Msg types ---

// HealthMsg carries the result of the one-time status check.
type HealthMsg struct {
	Status health.Status
	Err    error
}

// CampaignDoneMsg carries the outcome of a submitted campaign request.
type CampaignDoneMsg struct {
	Outcome campaign.Outcome
}

// CompletionMsg reports a forwarded "mark as completed" request.
type CompletionMsg struct {
	Index int
	Task  campaign.ReviewTask
	Err   error
}
