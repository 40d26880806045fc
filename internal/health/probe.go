// Package health runs the one-shot service status check shown in the
// dashboard banner.
package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// FallbackMessage is shown when the status check fails for any reason.
const FallbackMessage = "Backend connection failed"

// ErrAlreadyStarted is returned by Start after the first call.
var ErrAlreadyStarted = errors.New("health: probe already started")

// Checker fetches the service status message.
type Checker interface {
	Hello(ctx context.Context) (string, error)
}

// Status is the probe outcome. Message is empty until Resolved.
type Status struct {
	Message  string
	Resolved bool
}

// Probe performs a single status check per process and remembers the result.
type Probe struct {
	checker Checker
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
	status  Status
}

// Option configures a Probe.
type Option func(*Probe)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Probe) { p.logger = l }
}

// NewProbe creates a Probe backed by checker.
func NewProbe(checker Checker, opts ...Option) *Probe {
	p := &Probe{checker: checker}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Start runs the check. Only the first call reaches the network; later
// calls return the current status and ErrAlreadyStarted.
func (p *Probe) Start(ctx context.Context) (Status, error) {
	p.mu.Lock()
	if p.started {
		st := p.status
		p.mu.Unlock()
		return st, ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	msg, err := p.check(ctx)
	if err != nil {
		p.logger.Warn("status check failed", "error", err)
		msg = FallbackMessage
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = Status{Message: msg, Resolved: true}
	return p.status, nil
}

func (p *Probe) check(ctx context.Context) (string, error) {
	if p.checker == nil {
		return "", errors.New("health: no checker configured")
	}
	return p.checker.Hello(ctx)
}

// Started reports whether Start has been called.
func (p *Probe) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Status returns the current outcome.
func (p *Probe) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
