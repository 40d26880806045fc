package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"go.uber.org/automaxprocs/maxprocs"

	campaignmgr "github.com/smileynet/campaignmgr"
	"github.com/smileynet/campaignmgr/internal/api"
	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/config"
	"github.com/smileynet/campaignmgr/internal/dashboard"
	"github.com/smileynet/campaignmgr/internal/health"
	"github.com/smileynet/campaignmgr/internal/orchestrator"
	"github.com/smileynet/campaignmgr/internal/provider"
	"github.com/smileynet/campaignmgr/internal/server"
	"github.com/smileynet/campaignmgr/internal/state"
	"github.com/smileynet/campaignmgr/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// serveEnvPrefix namespaces the service's environment variables.
const serveEnvPrefix = "CAMPAIGNMGR_SERVE_"

// errServiceUnavailable is returned by the health command when the check fails.
var errServiceUnavailable = errors.New("health: service unavailable")

// Globals are flags shared by every command.
type Globals struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	APIURL  string           `name:"api-url" help:"Generation service base URL (overrides config)."`
	Timeout time.Duration    `help:"Campaign generation timeout (overrides config)."`
}

// CLI is the top-level command structure for campaignmgr.
type CLI struct {
	Globals

	Dashboard DashboardCmd `cmd:"" default:"1" help:"Open the interactive campaign dashboard."`
	Run       RunCmd       `cmd:"" help:"Generate one campaign and print the result."`
	Health    HealthCmd    `cmd:"" help:"Check the generation service status."`
	Serve     ServeCmd     `cmd:"" help:"Run the campaign generation service."`
}

// campaignService is the remote generation service as the client sees it.
type campaignService interface {
	health.Checker
	campaign.Generator
}

// loadConfig loads layered config from user and project paths with env
// and flag overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.LoadLayered(config.DefaultPaths()...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.APIURL != "" {
		cfg.Service.BaseURL = g.APIURL
	}
	if g.Timeout != 0 {
		cfg.Service.Timeout = g.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a text logger at the configured level writing to w.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openLogSink returns the configured log file, or io.Discard when none is
// set. The interactive UI never logs to the terminal.
func openLogSink(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Log.File == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newClient creates the HTTP client for the configured service.
func newClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	return api.NewClient(cfg.Service.BaseURL,
		api.WithTimeout(cfg.Service.Timeout),
		api.WithProbeTimeout(cfg.Service.ProbeTimeout),
		api.WithLogger(logger),
	)
}

// newApp wires the client-side state around svc.
func newApp(svc campaignService, logger *slog.Logger) *state.App {
	tasks := campaign.NewTaskStore(func(index int, task campaign.ReviewTask) {
		logger.Info("task completion requested", "index", index, "task_id", task.ID)
	})
	ctrl := campaign.NewController(svc, tasks, campaign.WithLogger(logger))
	probe := health.NewProbe(svc, health.WithLogger(logger))
	return state.New(probe, ctrl, state.WithLogger(logger))
}

// --- Dashboard command ---

// DashboardCmd opens the interactive dashboard TUI.
type DashboardCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the dashboard TUI.
func (d *DashboardCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return d.run(false, nil)
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	sink, closeLog, err := openLogSink(cfg)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer closeLog()
	logger, err := newLogger(cfg, sink)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := dashboard.NewModel(newApp(client, logger),
		dashboard.WithContext(ctx),
		dashboard.WithLogger(logger),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return d.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (d *DashboardCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- Run command ---

// RunCmd generates one campaign without the interactive UI.
type RunCmd struct {
	Brief []string `arg:"" help:"Campaign brief."`
	NoTUI bool     `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// Run executes the run command.
func (r *RunCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// The spinner display owns the terminal, so logs go to the sink there.
	logOut := io.Writer(os.Stderr)
	if !r.NoTUI && tui.IsTTY(os.Stdout) {
		sink, closeLog, err := openLogSink(cfg)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		defer closeLog()
		logOut = sink
	}
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// The cancel func is passed to the TUI so q / Ctrl+C abandons the run.
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	ctx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	bridge := tui.NewBridge()
	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: r.NoTUI,
		CancelFunc: runCancel,
	})
	return r.run(ctx, client, display, bridge, logger)
}

// run drives one generation with display lifecycle management.
func (r *RunCmd) run(ctx context.Context, svc campaignService, display tui.Display, bridge *tui.Bridge, logger *slog.Logger) error {
	brief := strings.Join(r.Brief, " ")
	if campaign.IsBlank(brief) {
		return fmt.Errorf("run: %w", campaign.ErrBlankBrief)
	}

	displayDone := make(chan error, 1)
	go func() {
		displayDone <- display.Run(context.Background(), bridge.Events())
	}()

	app := newApp(svc, logger)
	res, runErr := runCampaign(ctx, app, brief, bridge)
	if runErr != nil {
		bridge.Error(runErr)
	} else {
		bridge.Done(res, app.Snapshot().Tasks)
	}

	// Wait for the display so it releases the terminal.
	<-displayDone
	return runErr
}

// runCampaign signs in, probes the service and submits brief once,
// reporting each step through the bridge.
func runCampaign(ctx context.Context, app *state.App, brief string, bridge *tui.Bridge) (campaign.Result, error) {
	app.Login()

	bridge.Send(tui.StepUpdateMsg{Step: tui.StepHealth, Status: tui.StatusRunning})
	start := time.Now()
	st, _ := app.StartProbe(ctx)
	probeStatus := tui.StatusPassed
	if st.Message == health.FallbackMessage {
		probeStatus = tui.StatusFailed
	}
	bridge.Send(tui.StepUpdateMsg{
		Step: tui.StepHealth, Status: probeStatus,
		Detail: st.Message, Duration: time.Since(start),
	})

	app.SetBrief(brief)
	bridge.Send(tui.StepUpdateMsg{Step: tui.StepGenerate, Status: tui.StatusRunning})
	start = time.Now()
	res, err := app.Generate(ctx)
	if err != nil {
		detail := dashboard.NoticeFailed
		var ge *campaign.GenerationError
		if !errors.As(err, &ge) {
			detail = err.Error()
			err = fmt.Errorf("run: %w", err)
		}
		bridge.Send(tui.StepUpdateMsg{
			Step: tui.StepGenerate, Status: tui.StatusFailed,
			Detail: detail, Duration: time.Since(start),
		})
		return campaign.Result{}, err
	}
	bridge.Send(tui.StepUpdateMsg{
		Step: tui.StepGenerate, Status: tui.StatusPassed, Duration: time.Since(start),
	})
	return res, nil
}

// --- Health command ---

// HealthCmd runs the status check once and prints the banner line.
type HealthCmd struct{}

// Run executes the health command.
func (h *HealthCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return h.run(context.Background(), os.Stdout, health.NewProbe(client, health.WithLogger(logger)))
}

func (h *HealthCmd) run(ctx context.Context, w io.Writer, probe *health.Probe) error {
	st, err := probe.Start(ctx)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Backend Status: %s\n", st.Message)
	if st.Message == health.FallbackMessage {
		return errServiceUnavailable
	}
	return nil
}

// --- Serve command ---

// ServeCmd runs the campaign generation service.
type ServeCmd struct {
	Port       string `help:"Listen port (overrides CAMPAIGNMGR_SERVE_PORT)."`
	Copywriter string `help:"Copywriter to use (fallback, template)."`
}

// Run executes the serve command.
func (s *ServeCmd) Run(_ *Globals) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Warn("setting GOMAXPROCS failed", "error", err)
	}

	srv, err := s.build(logger, level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// build assembles the service from environment settings and flags. When
// level is non-nil it is set from the configured log level.
func (s *ServeCmd) build(logger *slog.Logger, level *slog.LevelVar) (*server.Server, error) {
	cfg, err := server.LoadConfig(serveEnvPrefix)
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}
	if s.Port != "" {
		cfg.Port = s.Port
	}
	if s.Copywriter != "" {
		cfg.Copywriter = s.Copywriter
	}
	if level != nil {
		lvl, _ := cfg.Level()
		level.Set(lvl)
	}

	reg := provider.NewRegistry()
	provider.RegisterBuiltins(reg, campaignmgr.OverlayFS(cfg.TemplatesDir, campaignmgr.CopyTemplates))
	cw, err := reg.New(cfg.Copywriter)
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}
	logger.Info("copywriter selected", "name", cw.Name())

	wf := orchestrator.New(cw,
		orchestrator.WithLogger(logger),
		orchestrator.WithStatusCallback(logStepStatus(logger)),
	)
	return server.New(cfg, wf, server.WithLogger(logger)), nil
}

// logStepStatus reports workflow step transitions at debug level.
func logStepStatus(logger *slog.Logger) orchestrator.StatusCallback {
	return func(su orchestrator.StatusUpdate) {
		attrs := []any{"step", string(su.Step), "status", string(su.Status)}
		if su.Detail != "" {
			attrs = append(attrs, "detail", su.Detail)
		}
		logger.Debug("workflow step", attrs...)
	}
}

const (
	exitSuccess    = 0
	exitGeneration = 1
	exitSetup      = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ge *campaign.GenerationError
	if errors.As(err, &ge) || errors.Is(err, errServiceUnavailable) {
		return exitGeneration
	}
	return exitSetup
}

func main() {
	// A missing .env file is fine; the environment is used as-is.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("campaignmgr"),
		kong.Description("Generate marketing campaigns from a brief and review the resulting tasks."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
