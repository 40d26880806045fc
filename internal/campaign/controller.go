package campaign

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Phase identifies which state the controller is in.
type Phase int

const (
	PhaseIdle       Phase = iota // No request yet.
	PhaseSubmitting              // One request in flight.
	PhaseSucceeded               // Last request returned a result.
	PhaseFailed                  // Last request failed.
)

// String returns the lower-case phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the controller state. Exactly one of Idle, Submitting,
// Succeeded or Failed; a result only exists on Succeeded.
type State interface {
	Phase() Phase
	isState()
}

// Idle is the initial state.
type Idle struct{}

// Submitting holds the brief of the request in flight.
type Submitting struct {
	Brief string
}

// Succeeded holds the result of the last request.
type Succeeded struct {
	Result Result
}

// Failed holds the cause of the last failure. The cause is for logs;
// users only ever see a generic notice.
type Failed struct {
	Err error
}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Submitting) Phase() Phase { return PhaseSubmitting }
func (Succeeded) Phase() Phase  { return PhaseSucceeded }
func (Failed) Phase() Phase     { return PhaseFailed }

func (Idle) isState()       {}
func (Submitting) isState() {}
func (Succeeded) isState()  {}
func (Failed) isState()     {}

// Request identifies one submission. Seq ties the eventual Outcome back to
// the submission that produced it.
type Request struct {
	Seq   uint64
	Brief string
}

// Outcome is what came back from the generation service for a Request.
type Outcome struct {
	Request Request
	Result  Result
	Err     error
}

// Snapshot is a consistent read of the controller and its task store.
type Snapshot struct {
	Brief string
	State State
	Tasks []ReviewTask
}

// Controller drives one campaign request at a time through
// Idle → Submitting → Succeeded | Failed.
type Controller struct {
	mu     sync.Mutex
	gen    Generator
	tasks  *TaskStore
	logger *slog.Logger

	brief string
	state State
	seq   uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates an Idle controller that appends review tasks to tasks.
func NewController(gen Generator, tasks *TaskStore, opts ...Option) *Controller {
	c := &Controller{
		gen:   gen,
		tasks: tasks,
		state: Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.tasks == nil {
		c.tasks = NewTaskStore(nil)
	}
	return c
}

// SetBrief replaces the brief text. Allowed in every state; an in-flight
// request keeps the brief it was submitted with.
func (c *Controller) SetBrief(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brief = text
}

// Brief returns the current brief text.
func (c *Controller) Brief() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brief
}

// State returns the current state. A Succeeded result is returned as a copy.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	if s, ok := c.state.(Succeeded); ok {
		return Succeeded{Result: s.Result.Clone()}
	}
	return c.state
}

// CanSubmit reports whether the submit control should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase() != PhaseSubmitting && !IsBlank(c.brief)
}

// Submit moves the controller to Submitting and returns the request to run.
// While a request is in flight it returns ErrRequestInFlight; for a blank
// brief it returns ErrBlankBrief. Neither error changes any state.
func (c *Controller) Submit() (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase() == PhaseSubmitting {
		return Request{}, ErrRequestInFlight
	}
	if IsBlank(c.brief) {
		return Request{}, ErrBlankBrief
	}

	c.seq++
	req := Request{Seq: c.seq, Brief: c.brief}
	c.state = Submitting{Brief: c.brief}
	c.logger.Info("campaign submitted", "seq", req.Seq, "brief_len", len(req.Brief))
	return req, nil
}

// Run performs the remote call for req. It does not touch controller state;
// pass the Outcome to Complete.
func (c *Controller) Run(ctx context.Context, req Request) Outcome {
	if c.gen == nil {
		return Outcome{Request: req, Err: errors.New("campaign: no generator configured")}
	}
	res, err := c.gen.RunCampaign(ctx, req.Brief)
	return Outcome{Request: req, Result: res, Err: err}
}

// Complete applies an outcome. It returns false, changing nothing, unless
// the controller is Submitting the outcome's request. On success the result
// is stored and its review task appended as one step.
func (c *Controller) Complete(out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase() != PhaseSubmitting || out.Request.Seq != c.seq {
		c.logger.Debug("stale campaign outcome ignored", "seq", out.Request.Seq, "current", c.seq)
		return false
	}

	if out.Err != nil {
		c.state = Failed{Err: out.Err}
		c.logger.Warn("campaign generation failed", "seq", out.Request.Seq, "error", out.Err)
		return true
	}

	res := out.Result.Clone()
	c.state = Succeeded{Result: res}
	if res.ReviewTask != nil {
		c.tasks.Append(*res.ReviewTask)
	}
	c.logger.Info("campaign generated",
		"seq", out.Request.Seq,
		"content_items", len(res.Content),
		"review_task", res.ReviewTask != nil,
	)
	return true
}

// Generate submits the current brief and waits for the outcome.
// A failed outcome is returned as *GenerationError.
func (c *Controller) Generate(ctx context.Context) (Result, error) {
	req, err := c.Submit()
	if err != nil {
		return Result{}, err
	}
	out := c.Run(ctx, req)
	c.Complete(out)
	if out.Err != nil {
		return Result{}, &GenerationError{Err: out.Err}
	}
	return out.Result.Clone(), nil
}

// Tasks returns the store that successful generations append to.
func (c *Controller) Tasks() *TaskStore {
	return c.tasks
}

// Snapshot returns brief, state and tasks read under one lock, so a
// Succeeded result is never observed without its appended task.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Brief: c.brief,
		State: c.stateLocked(),
		Tasks: c.tasks.List(),
	}
}
