package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campaignmgr/internal/campaign"
	"github.com/smileynet/campaignmgr/internal/health"
	"github.com/smileynet/campaignmgr/internal/state"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// briefHeight is the visible height of the brief input.
const briefHeight = 5

// Model is the root Bubble Tea model for the campaign manager TUI.
type Model struct {
	app    *state.App
	ctx    context.Context
	logger *slog.Logger

	width   int
	height  int
	brief   textarea.Model
	results viewport.Model
	spinner spinner.Model
	help    help.Model
	tasks   tasksState
	confirm *confirmState
	notice  string
	isError bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithContext sets the base context for network calls. It is cancelled
// only on process shutdown; users cannot abort a call.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// NewModel creates a dashboard Model over app.
func NewModel(app *state.App, opts ...ModelOption) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your campaign: product, audience, goals..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(briefHeight)
	ta.SetValue(app.Snapshot().Brief)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		app:     app,
		ctx:     context.Background(),
		brief:   ta,
		results: viewport.New(0, 0),
		spinner: s,
		help:    help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if app.Authenticated() && app.Snapshot().View == state.ViewDashboard {
		m.brief.Focus()
	}
	return m
}

// Init starts the one-time health check.
func (m Model) Init() tea.Cmd {
	return probeCmd(m.ctx, m.app)
}

// probeCmd runs the status check off the update loop.
func probeCmd(ctx context.Context, app *state.App) tea.Cmd {
	return func() tea.Msg {
		st, err := app.StartProbe(ctx)
		return HealthMsg{Status: st, Err: err}
	}
}

// runCmd performs the campaign request off the update loop.
func runCmd(ctx context.Context, app *state.App, req campaign.Request) tea.Cmd {
	return func() tea.Msg {
		return CampaignDoneMsg{Outcome: app.Run(ctx, req)}
	}
}

// Screen returns what the model currently renders.
func (m Model) Screen() Screen {
	snap := m.app.Snapshot()
	switch {
	case !snap.Authenticated:
		return ScreenLogin
	case m.confirm != nil:
		return ScreenConfirm
	case snap.View == state.ViewTasks:
		return ScreenTasks
	default:
		return ScreenDashboard
	}
}

// Update handles incoming messages with screen-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.brief.SetWidth(ContentWidth(msg.Width))
		m.results.Width = ContentWidth(msg.Width)
		m.syncResults()
		return m, nil

	case HealthMsg:
		if msg.Err != nil && !errors.Is(msg.Err, health.ErrAlreadyStarted) {
			m.logger.Warn("health check", "error", msg.Err)
		}
		return m, nil

	case CampaignDoneMsg:
		return m.handleDone(msg), nil

	case CompletionMsg:
		if msg.Err != nil {
			m.setNotice(msg.Err.Error(), true)
		} else {
			m.setNotice(fmt.Sprintf("Completion requested: %s", msg.Task.Title), false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.app.Snapshot().State.Phase() != campaign.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.brief.Focused() {
		var cmd tea.Cmd
		m.brief, cmd = m.brief.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleDone applies a finished request and refreshes the result pane.
func (m Model) handleDone(msg CampaignDoneMsg) Model {
	if !m.app.Complete(msg.Outcome) {
		return m
	}
	switch m.app.Snapshot().State.(type) {
	case campaign.Failed:
		m.setNotice(NoticeFailed, true)
	case campaign.Succeeded:
		m.clearNotice()
	}
	m.syncResults()
	return m
}

// handleKey processes key messages with global and screen-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.Screen() {
	case ScreenLogin:
		return m.handleLoginKey(msg)
	case ScreenConfirm:
		return m.handleConfirmKey(msg)
	case ScreenTasks:
		return m.handleTasksKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := LoginKeyMap()
	switch {
	case key.Matches(msg, km.Quit):
		return m, tea.Quit
	case key.Matches(msg, km.Login):
		m.app.Login()
		cmd := m.brief.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := FormKeyMap()
	switch {
	case key.Matches(msg, km.SwitchView):
		return m.switchView()
	case key.Matches(msg, km.Generate):
		return m.submit()
	case key.Matches(msg, km.ScrollUp):
		m.results.ViewUp()
		return m, nil
	case key.Matches(msg, km.ScrollDown):
		m.results.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.brief, cmd = m.brief.Update(msg)
	m.app.SetBrief(m.brief.Value())
	if m.notice == NoticeBlankBrief && !campaign.IsBlank(m.brief.Value()) {
		m.clearNotice()
	}
	return m, cmd
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := TaskKeyMap()
	tasks := m.app.Snapshot().Tasks
	switch {
	case key.Matches(msg, km.Quit):
		return m, tea.Quit
	case key.Matches(msg, km.SwitchView):
		return m.switchView()
	case key.Matches(msg, km.Up), key.Matches(msg, km.Down):
		m.tasks = m.tasks.Update(msg, len(tasks))
	case key.Matches(msg, km.Complete):
		if i := m.tasks.Selected(len(tasks)); i >= 0 {
			m.confirm = &confirmState{index: i, task: tasks[i]}
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := ConfirmKeyMap()
	switch {
	case key.Matches(msg, km.Cancel):
		m.confirm = nil
	case key.Matches(msg, km.Confirm):
		index := m.confirm.index
		m.confirm = nil
		task, err := m.app.RequestCompletion(index)
		return m, func() tea.Msg {
			return CompletionMsg{Index: index, Task: task, Err: err}
		}
	}
	return m, nil
}

// switchView toggles between the dashboard and the task list. Only input
// focus changes; the brief, result and tasks are untouched.
func (m Model) switchView() (tea.Model, tea.Cmd) {
	v, err := m.app.Toggle()
	if err != nil {
		m.logger.Warn("switch view", "error", err)
		return m, nil
	}
	if v == state.ViewDashboard {
		cmd := m.brief.Focus()
		return m, cmd
	}
	m.brief.Blur()
	return m, nil
}

// submit starts a campaign request for the current brief.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.app.Submit()
	switch {
	case errors.Is(err, campaign.ErrBlankBrief):
		m.setNotice(NoticeBlankBrief, true)
		return m, nil
	case errors.Is(err, campaign.ErrRequestInFlight):
		return m, nil
	case err != nil:
		m.logger.Warn("submit", "error", err)
		return m, nil
	}
	m.clearNotice()
	m.syncResults()
	return m, tea.Batch(runCmd(m.ctx, m.app, req), m.spinner.Tick)
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.isError = isError
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.isError = false
}

// syncResults renders the current result, if any, into the viewport.
func (m *Model) syncResults() {
	snap := m.app.Snapshot()
	m.results.Height = m.resultsHeight(snap)
	s, ok := snap.State.(campaign.Succeeded)
	if !ok {
		m.results.SetContent("")
		m.results.GotoTop()
		return
	}
	m.results.SetContent(renderResult(s.Result, ContentWidth(m.width)))
}

// View renders the active screen with the help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	screen := m.Screen()
	helpView := m.help.View(HelpBindings(screen))

	if screen == ScreenLogin {
		box := FocusedBorder().Padding(1, 4).Render(m.viewLogin())
		body := lipgloss.Place(m.width, max(m.height-helpBarHeight, 1), lipgloss.Center, lipgloss.Center, box)
		return lipgloss.JoinVertical(lipgloss.Left, body, helpView)
	}

	snap := m.app.Snapshot()
	header := m.header(snap.View)

	var body string
	switch screen {
	case ScreenConfirm:
		body = m.confirm.View()
	case ScreenTasks:
		body = m.tasks.View(snap.Tasks, ContentWidth(m.width))
	default:
		body = m.viewForm(snap)
	}
	if m.notice != "" && screen != ScreenDashboard {
		body += "\n\n" + m.viewNotice()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", helpView)
}

func (m Model) header(active state.View) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Campaign Manager"),
		m.viewTabs(active),
	)
}

func (m Model) viewLogin() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Campaign Manager"),
		"",
		"Sign in to your account",
		"",
		buttonStyle.Render("Login"),
	)
}

func (m Model) viewTabs(active state.View) string {
	var tabs []string
	for _, v := range state.Views {
		if v == active {
			tabs = append(tabs, activeTab.Render(v.String()))
		} else {
			tabs = append(tabs, inactiveTab.Render(v.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m Model) viewNotice() string {
	if m.isError {
		return errorText.Render(m.notice)
	}
	return okText.Render(m.notice)
}

// formTop renders the status banner, brief input and generate control.
func (m Model) formTop(snap state.Snapshot) string {
	var top strings.Builder

	if snap.Health.Resolved {
		line := "Backend Status: " + snap.Health.Message
		if snap.Health.Message == health.FallbackMessage {
			top.WriteString(errorText.Render(line))
		} else {
			top.WriteString(mutedText.Render(line))
		}
		top.WriteString("\n\n")
	}

	top.WriteString(headingStyle.Render("Campaign Brief") + "\n")
	top.WriteString(m.brief.View() + "\n\n")

	switch {
	case snap.State.Phase() == campaign.PhaseSubmitting:
		top.WriteString(disabledButtonStyle.Render(m.spinner.View() + " Generating..."))
	case snap.CanSubmit:
		top.WriteString(buttonStyle.Render("Generate Campaign"))
	default:
		top.WriteString(disabledButtonStyle.Render("Generate Campaign"))
	}
	if m.notice != "" {
		top.WriteString("  " + m.viewNotice())
	}
	return top.String()
}

// resultsHeight is the height left for the result pane below the form.
func (m Model) resultsHeight(snap state.Snapshot) int {
	used := lipgloss.Height(m.header(snap.View)) + 1 +
		lipgloss.Height(m.formTop(snap)) + 1 +
		1 + helpBarHeight
	return max(m.height-used, 3)
}

// viewForm renders the form and, after a success, the result pane.
func (m Model) viewForm(snap state.Snapshot) string {
	top := m.formTop(snap)
	if _, ok := snap.State.(campaign.Succeeded); !ok {
		return top
	}
	vp := m.results
	vp.Height = m.resultsHeight(snap)
	return top + "\n\n" + vp.View()
}
