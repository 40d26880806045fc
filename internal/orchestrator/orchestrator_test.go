package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/provider"
)

func staticCopywriter(segs ...string) *provider.MockCopywriter {
	return &provider.MockCopywriter{
		NameVal: "mock",
		AudienceFunc: func(context.Context, string) ([]string, error) {
			return segs, nil
		},
		CopyFunc: func(_ context.Context, _, seg string) (string, error) {
			return "copy for " + seg, nil
		},
	}
}

func fixedID() string { return "abc" }

func TestWorkflowError(t *testing.T) {
	inner := errors.New("boom")
	err := &WorkflowError{Step: StepGenerateAudience, Err: inner}

	if got := err.Error(); got != `workflow: step "generate_audience": boom` {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("WorkflowError should unwrap to the inner error")
	}
}

func TestNextStep(t *testing.T) {
	task := &campaign.ReviewTask{ID: "t"}
	content := []campaign.ContentItem{{Segment: "a", Copy: "b"}}
	tests := []struct {
		name  string
		state State
		want  Step
	}{
		{"empty", State{}, StepGenerateAudience},
		{"audience only", State{AudienceSegments: []string{"a"}}, StepGenerateContent},
		{"content", State{AudienceSegments: []string{"a"}, Content: content}, StepCreateReview},
		{"all done", State{AudienceSegments: []string{"a"}, Content: content, ReviewTask: task}, StepComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStep(tt.state); got != tt.want {
				t.Errorf("NextStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_HappyPath(t *testing.T) {
	// Given: a copywriter producing two segments
	var updates []StatusUpdate
	o := New(staticCopywriter("Students", "Parents"),
		WithIDFunc(fixedID),
		WithStatusCallback(func(su StatusUpdate) { updates = append(updates, su) }),
	)

	// When: the workflow runs
	state, err := o.Run(context.Background(), "Sell eco bottles to students")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Then: every step ran once, in order
	want := State{
		IntentBrief:      "Sell eco bottles to students",
		AudienceSegments: []string{"Students", "Parents"},
		Content: []campaign.ContentItem{
			{Segment: "Students", Copy: "copy for Students"},
			{Segment: "Parents", Copy: "copy for Parents"},
		},
		ReviewTask: &campaign.ReviewTask{
			ID:      "task-abc",
			Title:   "Review campaign: Sell eco bottles to students...",
			Details: "Review 2 content pieces for different audience segments",
			Status:  campaign.TaskPending,
		},
	}
	if !reflect.DeepEqual(state, want) {
		t.Errorf("Run() = %+v, want %+v", state, want)
	}

	var steps []string
	for _, su := range updates {
		steps = append(steps, fmt.Sprintf("%s:%s", su.Step, su.Status))
	}
	wantSteps := []string{
		"generate_audience:running", "generate_audience:passed",
		"generate_content:running", "generate_content:passed",
		"create_review:running", "create_review:passed",
	}
	if !reflect.DeepEqual(steps, wantSteps) {
		t.Errorf("updates = %v, want %v", steps, wantSteps)
	}
}

func TestRun_SegmentErrorBecomesCopy(t *testing.T) {
	cw := staticCopywriter("A", "B")
	cw.CopyFunc = func(_ context.Context, _, seg string) (string, error) {
		if seg == "B" {
			return "", errors.New("quota exceeded")
		}
		return "ok", nil
	}

	state, err := New(cw, WithIDFunc(fixedID)).Run(context.Background(), "brief")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(state.Content) != 2 {
		t.Fatalf("content = %v, want 2 items", state.Content)
	}
	if got := state.Content[1].Copy; got != "Error generating content for this segment: quota exceeded" {
		t.Errorf("failed segment copy = %q", got)
	}
	if state.ReviewTask == nil || !strings.HasPrefix(state.ReviewTask.Details, "Review 2 ") {
		t.Errorf("review task = %+v", state.ReviewTask)
	}
}

func TestRun_AudienceFailure(t *testing.T) {
	tests := []struct {
		name    string
		segs    []string
		err     error
		wantErr error
	}{
		{"copywriter error", nil, errors.New("down"), nil},
		{"no segments", nil, nil, ErrNoAudience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cw := &provider.MockCopywriter{
				AudienceFunc: func(context.Context, string) ([]string, error) { return tt.segs, tt.err },
			}
			var last StatusUpdate
			o := New(cw, WithStatusCallback(func(su StatusUpdate) { last = su }))

			_, err := o.Run(context.Background(), "brief")
			var we *WorkflowError
			if !errors.As(err, &we) {
				t.Fatalf("Run() error = %T (%v), want *WorkflowError", err, err)
			}
			if we.Step != StepGenerateAudience {
				t.Errorf("Step = %q", we.Step)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if last.Status != StepFailed {
				t.Errorf("last update = %+v, want failed", last)
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(staticCopywriter("A")).Run(ctx, "brief")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRun_CancelDuringCopyFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cw := staticCopywriter("A")
	cw.CopyFunc = func(context.Context, string, string) (string, error) {
		cancel()
		return "", context.Canceled
	}

	_, err := New(cw).Run(ctx, "brief")
	var we *WorkflowError
	if !errors.As(err, &we) || we.Step != StepGenerateContent {
		t.Errorf("Run() error = %v, want generate_content failure", err)
	}
}

func TestRun_MaxSteps(t *testing.T) {
	_, err := New(staticCopywriter("A"), WithMaxSteps(1)).Run(context.Background(), "brief")
	if err == nil || !strings.Contains(err.Error(), "max steps") {
		t.Errorf("Run() error = %v, want max steps error", err)
	}
}

func TestRun_NilCopywriter(t *testing.T) {
	_, err := New(nil).Run(context.Background(), "brief")
	var we *WorkflowError
	if !errors.As(err, &we) || we.Step != "setup" {
		t.Errorf("Run() error = %v, want setup error", err)
	}
}

func TestRun_FallbackCopywriter(t *testing.T) {
	state, err := New(provider.Fallback{}, WithIDFunc(fixedID)).Run(context.Background(), "brief")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(state.AudienceSegments, []string{provider.FallbackSegment}) {
		t.Errorf("segments = %q", state.AudienceSegments)
	}
	if len(state.Content) != 1 || state.Content[0].Copy != provider.FallbackCopy {
		t.Errorf("content = %+v", state.Content)
	}
}

func TestReviewTitle(t *testing.T) {
	tests := []struct {
		brief string
		want  string
	}{
		{"short", "Review campaign: short..."},
		{strings.Repeat("a", 60), "Review campaign: " + strings.Repeat("a", 50) + "..."},
		{strings.Repeat("é", 55), "Review campaign: " + strings.Repeat("é", 50) + "..."},
	}
	for _, tt := range tests {
		if got := ReviewTitle(tt.brief); got != tt.want {
			t.Errorf("ReviewTitle(%q) = %q, want %q", tt.brief, got, tt.want)
		}
	}
}
