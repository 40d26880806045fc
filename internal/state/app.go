// Package state holds the application state object: the single owner of
// the session gate, health probe, campaign controller, task list and
// active view.
package state

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/health"
	"github.com/smileynet/campaignmgr/internal/session"
)

// Sentinel errors.
var (
	ErrNotAuthenticated = errors.New("state: not signed in")
	ErrUnknownView      = errors.New("state: unknown view")
)

// Snapshot is a consistent read-only view of the application.
type Snapshot struct {
	Authenticated bool
	Health        health.Status
	View          View
	Brief         string
	State         campaign.State
	Tasks         []campaign.ReviewTask
	CanSubmit     bool
}

// App owns every mutable component. Presentation code mutates through App
// and reads through Snapshot.
type App struct {
	gate   session.Gate
	router Router
	probe  *health.Probe
	ctrl   *campaign.Controller
	logger *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New creates a signed-out App on the dashboard view.
func New(probe *health.Probe, ctrl *campaign.Controller, opts ...Option) *App {
	a := &App{probe: probe, ctrl: ctrl}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.probe == nil {
		a.probe = health.NewProbe(nil)
	}
	if a.ctrl == nil {
		a.ctrl = campaign.NewController(nil, nil)
	}
	return a
}

// Login opens the session gate. Nothing else is reset.
func (a *App) Login() {
	if a.gate.Login() {
		a.logger.Info("signed in")
	}
}

// Authenticated reports whether Login has been called.
func (a *App) Authenticated() bool {
	return a.gate.Authenticated()
}

// Select makes v the active view.
func (a *App) Select(v View) error {
	if !a.gate.Authenticated() {
		return ErrNotAuthenticated
	}
	return a.router.Select(v)
}

// Toggle switches to the other view.
func (a *App) Toggle() (View, error) {
	if !a.gate.Authenticated() {
		return a.router.Active(), ErrNotAuthenticated
	}
	return a.router.Toggle(), nil
}

// SetBrief replaces the brief text.
func (a *App) SetBrief(text string) {
	a.ctrl.SetBrief(text)
}

// Submit starts a generation for the current brief.
func (a *App) Submit() (campaign.Request, error) {
	if !a.gate.Authenticated() {
		return campaign.Request{}, ErrNotAuthenticated
	}
	return a.ctrl.Submit()
}

// Generate submits the current brief and waits for the outcome. A failed
// outcome is returned as *campaign.GenerationError.
func (a *App) Generate(ctx context.Context) (campaign.Result, error) {
	if !a.gate.Authenticated() {
		return campaign.Result{}, ErrNotAuthenticated
	}
	return a.ctrl.Generate(ctx)
}

// Run performs the remote call for req without touching state.
func (a *App) Run(ctx context.Context, req campaign.Request) campaign.Outcome {
	return a.ctrl.Run(ctx, req)
}

// Complete applies the outcome of a submission.
func (a *App) Complete(out campaign.Outcome) bool {
	return a.ctrl.Complete(out)
}

// StartProbe runs the one-time health check.
func (a *App) StartProbe(ctx context.Context) (health.Status, error) {
	return a.probe.Start(ctx)
}

// RequestCompletion forwards "mark as completed" for the task at index.
func (a *App) RequestCompletion(index int) (campaign.ReviewTask, error) {
	if !a.gate.Authenticated() {
		return campaign.ReviewTask{}, ErrNotAuthenticated
	}
	return a.ctrl.Tasks().RequestCompletion(index)
}

// Snapshot reads every component. Brief, state and tasks come from one
// controller read, so a result is never seen without its task.
func (a *App) Snapshot() Snapshot {
	cs := a.ctrl.Snapshot()
	return Snapshot{
		Authenticated: a.gate.Authenticated(),
		Health:        a.probe.Status(),
		View:          a.router.Active(),
		Brief:         cs.Brief,
		State:         cs.State,
		Tasks:         cs.Tasks,
		CanSubmit:     cs.State.Phase() != campaign.PhaseSubmitting && !campaign.IsBlank(cs.Brief),
	}
}
