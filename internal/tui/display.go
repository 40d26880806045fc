package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// DisplayEvent is an event sent to a Display via the update channel.
// Implemented by StepUpdateMsg, RunDoneMsg and RunErrorMsg.
type DisplayEvent interface {
	isDisplayEvent()
}

func (StepUpdateMsg) isDisplayEvent() {}
func (RunDoneMsg) isDisplayEvent()    {}
func (RunErrorMsg) isDisplayEvent()   {}

// Verify at compile time that message types implement DisplayEvent.
var (
	_ DisplayEvent = StepUpdateMsg{}
	_ DisplayEvent = RunDoneMsg{}
	_ DisplayEvent = RunErrorMsg{}
)

// Display renders run progress.
type Display interface {
	Run(ctx context.Context, events <-chan DisplayEvent) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer          // Output destination (default: os.Stdout).
	ForcePlain bool               // Force plain text even if TTY.
	Steps      []string           // Step names for TUI initialization (default: Steps).
	CancelFunc context.CancelFunc // Called by TUI on quit keypress (ignored by PlainDisplay).
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain text
// display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Steps == nil {
		opts.Steps = Steps
	}

	if opts.ForcePlain || !IsTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}

	return &TUIDisplay{steps: opts.Steps, w: opts.Writer, cancelFunc: opts.CancelFunc}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bridge manages the channel between a run producer and a Display consumer.
type Bridge struct {
	ch chan DisplayEvent
}

// NewBridge creates a Bridge with a buffered event channel.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan DisplayEvent, 16)}
}

// Events returns the read-only channel for Display.Run() to consume.
func (b *Bridge) Events() <-chan DisplayEvent {
	return b.ch
}

// Send delivers a StepUpdateMsg to the display.
// It blocks if the channel buffer (16) is full.
func (b *Bridge) Send(msg StepUpdateMsg) {
	b.ch <- msg
}

// Done delivers the outcome and closes the channel.
func (b *Bridge) Done(res campaign.Result, tasks []campaign.ReviewTask) {
	b.ch <- RunDoneMsg{Result: res, Tasks: tasks}
	close(b.ch)
}

// Error signals run failure and closes the channel.
func (b *Bridge) Error(err error) {
	b.ch <- RunErrorMsg{Err: err}
	close(b.ch)
}

// PlainDisplay renders progress as timestamped text lines.
type PlainDisplay struct {
	w io.Writer
}

// Run loops over events, printing each update as a text line and the
// outcome at the end. Returns the run error if the run failed, or the
// context error if cancelled.
func (d *PlainDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch msg := ev.(type) {
			case StepUpdateMsg:
				d.renderUpdate(msg)
			case RunDoneMsg:
				_, _ = fmt.Fprintln(d.w)
				FormatResult(d.w, msg.Result, msg.Tasks)
				return nil
			case RunErrorMsg:
				return msg.Err
			}
		}
	}
}

func (d *PlainDisplay) renderUpdate(su StepUpdateMsg) {
	ts := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s %s", ts, su.Step, su.Status)
	if su.Duration > 0 {
		line += fmt.Sprintf(" (%.1fs)", su.Duration.Seconds())
	}
	if su.Detail != "" {
		line += ": " + su.Detail
	}
	_, _ = fmt.Fprintln(d.w, line)
}

// TUIDisplay renders progress using a Bubble Tea terminal UI.
// Falls back to PlainDisplay if the TUI program fails to start.
type TUIDisplay struct {
	steps      []string
	w          io.Writer
	cancelFunc context.CancelFunc
}

// Run starts the Bubble Tea program and feeds events from the channel.
// If the TUI fails to initialize, it falls back to plain text output.
func (d *TUIDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	var opts []ModelOption
	if d.cancelFunc != nil {
		opts = append(opts, WithCancelFunc(d.cancelFunc))
	}
	model := NewModel(d.steps, opts...)
	p := tea.NewProgram(model, tea.WithOutput(d.w), tea.WithContext(ctx))

	// Forward events through an intermediate channel so we can stop
	// the goroutine cleanly on TUI failure before falling back.
	fwd := make(chan DisplayEvent, 16)
	stop := make(chan struct{})

	go func() {
		defer close(fwd)
		for ev := range events {
			select {
			case fwd <- ev:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		for ev := range fwd {
			p.Send(ev)
		}
	}()

	final, err := p.Run()
	if err != nil {
		close(stop)
		plain := &PlainDisplay{w: d.w}
		return plain.Run(ctx, events)
	}

	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
