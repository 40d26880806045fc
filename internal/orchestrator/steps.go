package orchestrator

import "github.com/smileynet/campaignmgr/internal/campaign"

// Step names a unit of workflow work.
type Step string

const (
	StepGenerateAudience Step = "generate_audience"
	StepGenerateContent  Step = "generate_content"
	StepCreateReview     Step = "create_review"
	StepComplete         Step = "complete"
)

// StepStatus represents the current state of a step execution.
type StepStatus string

const (
	StepRunning StepStatus = "running"
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
)

// StatusUpdate reports progress of a step.
type StatusUpdate struct {
	Step   Step
	Status StepStatus
	Detail string
}

// StatusCallback receives progress updates.
type StatusCallback func(StatusUpdate)

// State is the accumulated workflow state for one brief.
type State struct {
	IntentBrief      string
	AudienceSegments []string
	Content          []campaign.ContentItem
	ReviewTask       *campaign.ReviewTask
}

// NextStep picks the step to run from what the state already holds.
func NextStep(s State) Step {
	switch {
	case len(s.AudienceSegments) == 0:
		return StepGenerateAudience
	case len(s.Content) == 0:
		return StepGenerateContent
	case s.ReviewTask == nil:
		return StepCreateReview
	default:
		return StepComplete
	}
}
