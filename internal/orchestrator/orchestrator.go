// Package orchestrator runs the campaign generation workflow: it picks the
// next step from the accumulated state until the campaign is complete.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/provider"
)

// maxTitleRunes bounds the brief excerpt used in review task titles.
const maxTitleRunes = 50

// defaultMaxSteps bounds the loop; a full run takes three steps.
const defaultMaxSteps = 8

// ErrNoAudience indicates the copywriter returned no audience segments.
var ErrNoAudience = errors.New("orchestrator: no audience segments generated")

// WorkflowError indicates a workflow failure with step context.
type WorkflowError struct {
	Step Step
	Err  error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow: step %q: %s", e.Step, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Orchestrator sequences workflow steps over a copywriter.
type Orchestrator struct {
	copywriter     provider.Copywriter
	statusCallback StatusCallback
	logger         *slog.Logger
	newID          func() string
	maxSteps       int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// New creates an Orchestrator with the given copywriter and options.
func New(cw provider.Copywriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		copywriter:     cw,
		statusCallback: func(StatusUpdate) {},
		newID:          uuid.NewString,
		maxSteps:       defaultMaxSteps,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// WithStatusCallback sets the callback for progress updates.
func WithStatusCallback(cb StatusCallback) Option {
	return func(o *Orchestrator) { o.statusCallback = cb }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithIDFunc overrides the review task id generator.
func WithIDFunc(f func() string) Option {
	return func(o *Orchestrator) { o.newID = f }
}

// WithMaxSteps overrides the step limit.
func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) { o.maxSteps = n }
}

// Run executes the workflow for a brief and returns the final state.
// A copy failure for one segment is recorded as that segment's copy
// instead of failing the run.
func (o *Orchestrator) Run(ctx context.Context, brief string) (State, error) {
	if o.copywriter == nil {
		return State{}, &WorkflowError{Step: "setup", Err: errors.New("copywriter is required")}
	}

	state := State{IntentBrief: brief}
	for i := 0; i < o.maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return state, &WorkflowError{Step: NextStep(state), Err: err}
		}

		step := NextStep(state)
		if step == StepComplete {
			o.logger.Debug("workflow complete", "steps", i)
			return state, nil
		}

		o.notify(StatusUpdate{Step: step, Status: StepRunning})
		next, err := o.execute(ctx, step, state)
		if err != nil {
			o.notify(StatusUpdate{Step: step, Status: StepFailed, Detail: err.Error()})
			return state, &WorkflowError{Step: step, Err: err}
		}
		state = next
		o.notify(StatusUpdate{Step: step, Status: StepPassed})
	}

	return state, &WorkflowError{
		Step: NextStep(state),
		Err:  fmt.Errorf("max steps (%d) exceeded", o.maxSteps),
	}
}

// execute runs one step against a copy of the state.
func (o *Orchestrator) execute(ctx context.Context, step Step, s State) (State, error) {
	switch step {
	case StepGenerateAudience:
		segs, err := o.copywriter.Audience(ctx, s.IntentBrief)
		if err != nil {
			return s, fmt.Errorf("generating audience: %w", err)
		}
		if len(segs) == 0 {
			return s, ErrNoAudience
		}
		o.logger.Info("generated audience", "segments", len(segs))
		s.AudienceSegments = segs
		return s, nil

	case StepGenerateContent:
		content := make([]campaign.ContentItem, 0, len(s.AudienceSegments))
		for _, seg := range s.AudienceSegments {
			text, err := o.copywriter.Copy(ctx, s.IntentBrief, seg)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return s, ctxErr
				}
				o.logger.Warn("copy generation failed", "segment", seg, "error", err)
				text = "Error generating content for this segment: " + err.Error()
			}
			content = append(content, campaign.ContentItem{Segment: seg, Copy: text})
		}
		s.Content = content
		return s, nil

	case StepCreateReview:
		s.ReviewTask = &campaign.ReviewTask{
			ID:      "task-" + o.newID(),
			Title:   ReviewTitle(s.IntentBrief),
			Details: fmt.Sprintf("Review %d content pieces for different audience segments", len(s.Content)),
			Status:  campaign.TaskPending,
		}
		return s, nil

	default:
		return s, fmt.Errorf("unknown step %q", step)
	}
}

// ReviewTitle builds a review task title from the first runes of a brief.
func ReviewTitle(brief string) string {
	r := []rune(brief)
	if len(r) > maxTitleRunes {
		r = r[:maxTitleRunes]
	}
	return "Review campaign: " + string(r) + "..."
}

// notify fires the status callback.
func (o *Orchestrator) notify(su StatusUpdate) {
	o.statusCallback(su)
}
