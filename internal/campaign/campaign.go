// Package campaign owns the campaign-generation request lifecycle and the
// review task list that successful generations feed.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrBlankBrief      = errors.New("campaign: brief is blank")
	ErrRequestInFlight = errors.New("campaign: a request is already in flight")
	ErrTaskIndex       = errors.New("campaign: task index out of range")
)

// Generator sends a brief to the remote generation service.
type Generator interface {
	RunCampaign(ctx context.Context, brief string) (Result, error)
}

// TaskStatus is the review state reported by the generation service.
// The client never changes it.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// ContentItem is one piece of generated copy for an audience segment.
type ContentItem struct {
	Segment string
	Copy    string
}

// ReviewTask is a unit of human follow-up work produced alongside a result.
type ReviewTask struct {
	ID      string
	Title   string
	Details string
	Status  TaskStatus
}

// Result is the structured output of one campaign generation.
type Result struct {
	AudienceSegments string
	Content          []ContentItem // Display order, verbatim from the service.
	ReviewTask       *ReviewTask   // Nil when the service created no task.
}

// Clone returns a deep copy so that callers never share the content slice
// or the review task with the stored result.
func (r Result) Clone() Result {
	out := Result{AudienceSegments: r.AudienceSegments}
	if r.Content != nil {
		out.Content = append([]ContentItem(nil), r.Content...)
	}
	if r.ReviewTask != nil {
		task := *r.ReviewTask
		out.ReviewTask = &task
	}
	return out
}

// IsBlank reports whether a brief would be rejected before submission.
func IsBlank(brief string) bool {
	return strings.TrimSpace(brief) == ""
}

// GenerationError reports that a submission ended in the Failed state.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("campaign: generation failed: %s", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
