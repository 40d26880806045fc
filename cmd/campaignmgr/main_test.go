package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/health"
	"github.com/smileynet/campaignmgr/internal/tui"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeService implements campaignService.
type fakeService struct {
	helloMsg string
	helloErr error
	result   campaign.Result
	runErr   error
	runs     atomic.Int32
}

func (f *fakeService) Hello(context.Context) (string, error) {
	return f.helloMsg, f.helloErr
}

func (f *fakeService) RunCampaign(_ context.Context, _ string) (campaign.Result, error) {
	f.runs.Add(1)
	return f.result, f.runErr
}

func ecoService() *fakeService {
	return &fakeService{
		helloMsg: "Backend is running!",
		result: campaign.Result{
			AudienceSegments: "students",
			Content:          []campaign.ContentItem{{Segment: "students", Copy: "Go green"}},
			ReviewTask: &campaign.ReviewTask{
				ID: "1", Title: "Review copy", Details: "...", Status: campaign.TaskPending,
			},
		},
	}
}

func newParser(t *testing.T, cli *CLI, out io.Writer) *kong.Kong {
	t.Helper()
	k, err := kong.New(cli,
		kong.Vars{"version": "v1.0.0 abc1234 2026-01-01T00:00:00Z"},
		kong.Writers(out, out),
		kong.Exit(func(int) { panic(errExitCalled) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func plainRun(t *testing.T, svc campaignService, brief ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &RunCmd{Brief: brief, NoTUI: true}
	display := tui.NewDisplay(tui.DisplayOptions{Writer: &buf, ForcePlain: true})
	err := cmd.run(context.Background(), svc, display, tui.NewBridge(), discard)
	return buf.String(), err
}

func TestCLI_VersionFlag(t *testing.T) {
	// Given: a CLI parser with version, commit, and date
	var cli CLI
	var buf bytes.Buffer
	k := newParser(t, &cli, &buf)

	// When: --version flag is passed
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from --version flag")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, errExitCalled) {
			panic(r)
		}

		// Then: version, commit, and date are all present in output
		for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("version output = %q, want to contain %q", buf.String(), want)
			}
		}
	}()
	_, _ = k.Parse([]string{"--version"})
}

func TestCLI_Parse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "no command opens the dashboard",
			args:    nil,
			command: "dashboard",
		},
		{
			name:    "run joins brief words",
			args:    []string{"run", "Sell", "eco", "bottles"},
			command: "run <brief>",
			check: func(t *testing.T, cli *CLI) {
				if got := strings.Join(cli.Run.Brief, " "); got != "Sell eco bottles" {
					t.Errorf("brief = %q", got)
				}
				if cli.Run.NoTUI {
					t.Error("NoTUI should default to false")
				}
			},
		},
		{
			name:    "global overrides",
			args:    []string{"--api-url", "http://svc:9000", "--timeout", "30s", "run", "--no-tui", "x"},
			command: "run <brief>",
			check: func(t *testing.T, cli *CLI) {
				if cli.APIURL != "http://svc:9000" || cli.Timeout != 30*time.Second || !cli.Run.NoTUI {
					t.Errorf("globals = %+v, run = %+v", cli.Globals, cli.Run)
				}
			},
		},
		{
			name:    "serve flags",
			args:    []string{"serve", "--port", "8080", "--copywriter", "template"},
			command: "serve",
			check: func(t *testing.T, cli *CLI) {
				if cli.Serve.Port != "8080" || cli.Serve.Copywriter != "template" {
					t.Errorf("serve = %+v", cli.Serve)
				}
			},
		},
		{name: "health", args: []string{"health"}, command: "health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			ctx, err := newParser(t, &cli, io.Discard).Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if ctx.Command() != tt.command {
				t.Errorf("Command() = %q, want %q", ctx.Command(), tt.command)
			}
			if tt.check != nil {
				tt.check(t, &cli)
			}
		})
	}
}

func TestCLI_RunRequiresBrief(t *testing.T) {
	var cli CLI
	if _, err := newParser(t, &cli, io.Discard).Parse([]string{"run"}); err == nil {
		t.Error("run without a brief should fail to parse")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"generation failed", &campaign.GenerationError{Err: errors.New("500")}, exitGeneration},
		{"wrapped generation", fmt.Errorf("run: %w", &campaign.GenerationError{Err: errors.New("x")}), exitGeneration},
		{"service unavailable", errServiceUnavailable, exitGeneration},
		{"blank brief", fmt.Errorf("run: %w", campaign.ErrBlankBrief), exitSetup},
		{"config", errors.New("config: bad"), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunCmd_EcoScenario(t *testing.T) {
	// Given: a service that answers the eco bottles brief
	svc := ecoService()

	// When: the run command generates a campaign in plain mode
	out, err := plainRun(t, svc, "Sell", "eco", "bottles", "to", "students")

	// Then: the result and the one-entry task list are printed
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{
		"health check passed",
		"Backend is running!",
		"generate campaign passed",
		"students: Go green",
		"1. Review copy [pending]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if svc.runs.Load() != 1 {
		t.Errorf("service called %d times, want 1", svc.runs.Load())
	}
}

func TestRunCmd_ServerError(t *testing.T) {
	svc := ecoService()
	svc.runErr = errors.New("api: /api/run-campaign: unexpected status 500")

	out, err := plainRun(t, svc, "brief")

	var ge *campaign.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("run() error = %v, want *GenerationError", err)
	}
	if exitCode(err) != exitGeneration {
		t.Errorf("exitCode = %d", exitCode(err))
	}
	if !strings.Contains(out, "generate campaign failed") {
		t.Errorf("output should report the failed step:\n%s", out)
	}
}

func TestRunCmd_ProbeFailureStillGenerates(t *testing.T) {
	svc := ecoService()
	svc.helloErr = errors.New("connection refused")

	out, err := plainRun(t, svc, "brief")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, "health check failed") || !strings.Contains(out, health.FallbackMessage) {
		t.Errorf("output should show the fallback status:\n%s", out)
	}
	if svc.runs.Load() != 1 {
		t.Errorf("service called %d times, want 1", svc.runs.Load())
	}
}

func TestRunCmd_BlankBrief(t *testing.T) {
	svc := ecoService()

	_, err := plainRun(t, svc, " ", "\t")

	if !errors.Is(err, campaign.ErrBlankBrief) {
		t.Fatalf("run() error = %v, want ErrBlankBrief", err)
	}
	if exitCode(err) != exitSetup {
		t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
	}
	if svc.runs.Load() != 0 {
		t.Error("blank brief must not reach the service")
	}
}

func TestRunCmd_NoReviewTask(t *testing.T) {
	svc := ecoService()
	svc.result.ReviewTask = nil

	out, err := plainRun(t, svc, "brief")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, tui.EmptyTasksText) {
		t.Errorf("output should show the empty task list:\n%s", out)
	}
}

func TestHealthCmd(t *testing.T) {
	tests := []struct {
		name    string
		svc     *fakeService
		want    string
		wantErr error
	}{
		{"up", &fakeService{helloMsg: "Backend is running!"}, "Backend Status: Backend is running!", nil},
		{"down", &fakeService{helloErr: errors.New("refused")}, "Backend Status: " + health.FallbackMessage, errServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := (&HealthCmd{}).run(context.Background(), &buf, health.NewProbe(tt.svc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

type fakeProgram struct {
	called bool
	err    error
}

func (p *fakeProgram) Run() (tea.Model, error) {
	p.called = true
	return nil, p.err
}

func TestDashboardCmd_Run(t *testing.T) {
	t.Run("requires a TTY", func(t *testing.T) {
		prog := &fakeProgram{}
		err := (&DashboardCmd{}).run(false, prog)
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("run() error = %v, want TTY error", err)
		}
		if prog.called {
			t.Error("program should not run without a TTY")
		}
	})

	t.Run("runs the program", func(t *testing.T) {
		prog := &fakeProgram{err: errors.New("tea failed")}
		err := (&DashboardCmd{}).run(true, prog)
		if !prog.called {
			t.Error("program should run")
		}
		if err == nil || err.Error() != "tea failed" {
			t.Errorf("run() error = %v", err)
		}
	})
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CAMPAIGNMGR_API_URL", "http://env:1")

	cfg, err := loadConfig(&Globals{APIURL: "http://flag:2", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Service.BaseURL != "http://flag:2" {
		t.Errorf("BaseURL = %q, flag should win over env", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Service.Timeout)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := loadConfig(&Globals{APIURL: "not a url"}); err == nil {
		t.Error("loadConfig() should reject an invalid base URL")
	}
}

func TestOpenLogSink(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := loadConfig(&Globals{})
	if err != nil {
		t.Fatal(err)
	}

	w, closeFn, err := openLogSink(cfg)
	if err != nil {
		t.Fatalf("openLogSink() error = %v", err)
	}
	closeFn()
	if w != io.Discard {
		t.Error("no log file should discard")
	}

	cfg.Log.File = filepath.Join(t.TempDir(), "campaignmgr.log")
	w, closeFn, err = openLogSink(cfg)
	if err != nil {
		t.Fatalf("openLogSink() error = %v", err)
	}
	logger, err := newLogger(cfg, w)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	closeFn()

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("log file = %q", data)
	}
}

func TestServeCmd_Build(t *testing.T) {
	t.Run("defaults to the fallback copywriter", func(t *testing.T) {
		if _, err := (&ServeCmd{Port: "0"}).build(discard, nil); err != nil {
			t.Fatalf("build() error = %v", err)
		}
	})

	t.Run("template copywriter", func(t *testing.T) {
		if _, err := (&ServeCmd{Copywriter: "template"}).build(discard, nil); err != nil {
			t.Fatalf("build() error = %v", err)
		}
	})

	t.Run("unknown copywriter", func(t *testing.T) {
		_, err := (&ServeCmd{Copywriter: "gemini"}).build(discard, nil)
		if err == nil || !strings.Contains(err.Error(), "gemini") {
			t.Errorf("build() error = %v", err)
		}
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("CAMPAIGNMGR_SERVE_RATE_LIMIT", "fast")
		if _, err := (&ServeCmd{}).build(discard, nil); err == nil {
			t.Error("build() should fail on bad env")
		}
	})
}

func TestServeCmd_BuildLogsWorkflowSteps(t *testing.T) {
	// Given: a service built with debug logging enabled in the environment
	t.Setenv("CAMPAIGNMGR_SERVE_LOG_LEVEL", "debug")
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))
	srv, err := (&ServeCmd{}).build(logger, level)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}

	// When: a campaign is generated
	req := httptest.NewRequest(http.MethodPost, "/api/run-campaign", strings.NewReader(`{"intent_brief":"Sell eco bottles"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// Then: every step transition is logged
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
	for _, step := range []string{"generate_audience", "generate_content", "create_review"} {
		if !strings.Contains(buf.String(), "msg=\"workflow step\" step="+step+" status=passed") {
			t.Errorf("log missing passed %s:\n%s", step, buf.String())
		}
	}
}

func TestNewApp_CompletionHookLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	app := newApp(ecoService(), logger)
	app.Login()
	app.SetBrief("brief")

	req, err := app.Submit()
	if err != nil {
		t.Fatal(err)
	}
	app.Complete(app.Run(context.Background(), req))

	if _, err := app.RequestCompletion(0); err != nil {
		t.Fatalf("RequestCompletion() error = %v", err)
	}
	if !strings.Contains(buf.String(), "task completion requested") {
		t.Errorf("log = %q", buf.String())
	}
}
