// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the countdown full-screen and forwards key
// presses to the engine. Engine events arrive as Bubble Tea messages, so
// the view only ever redraws from the event loop. Notices from other
// goroutines reach the model through Program.Send.
package display

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/deepwork/internal/domain"
)

// Controller is the part of the engine the UI drives.
type Controller interface {
	Dispatch(cmd domain.Command) error
	State() domain.TimerState
}

// Parser turns a typed line into a command.
type Parser interface {
	Parse(input string) (domain.Command, error)
}

// ── Styles ───────────────────────────────────────────────────────

var (
	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	clockPausedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Bold(true)

	dotOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	dotOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))
)

// Terminal stand-ins for the bundled and custom images.
var imageTints = map[string]string{
	"lofi_bg_1": "#2A1B14",
	"lofi_bg_2": "#132420",
	"lofi_bg_3": "#231332",
	"lofi_bg_4": "#1B1F2C",
}

const customTint = "#1F1F1F"

const helpLine = "space start/pause · r reset · s skip · m mode · b background · p power save · : command · q quit"

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.PrintVoice] and [UI.Quit] at any time.
type UI struct {
	program *tea.Program
	done    atomic.Bool
}

// NewUI creates the display. events is usually an engine subscription;
// the UI exits when it is closed.
func NewUI(ctrl Controller, parser Parser, events <-chan domain.Event) *UI {
	return &UI{
		program: tea.NewProgram(newModel(ctrl, parser, events)),
	}
}

// PrintVoice shows a voice-recognised command in the status line. Before
// Run starts it waits for the event loop; after Run returns it is a no-op.
func (u *UI) PrintVoice(text string) {
	if !u.done.Load() {
		u.program.Send(noticeMsg("heard: " + text))
	}
}

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() { u.program.Quit() }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ctrl   Controller
	parser Parser
	events <-chan domain.Event

	state  domain.TimerState
	bar    progress.Model
	input  textinput.Model
	typing bool
	status string
	failed bool // status is an error
	width  int
}

// Messages.
type (
	eventMsg        domain.Event
	noticeMsg       string
	engineClosedMsg struct{}
)

func newModel(ctrl Controller, parser Parser, events <-chan domain.Event) model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 80
	ti.Width = 40

	bar := progress.New(
		progress.WithSolidFill("#fde68a"),
		progress.WithoutPercentage(),
	)
	bar.Width = 40

	return model{
		ctrl:   ctrl,
		parser: parser,
		events: events,
		state:  ctrl.State(),
		bar:    bar,
		input:  ti,
	}
}

func waitForEvent(events <-chan domain.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		tea.SetWindowTitle(windowTitle(m.state)),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.typing {
			return m.updateTyping(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 10 {
			m.bar.Width = min(w, 60)
		}
		return m, nil

	case eventMsg:
		m.state = msg.State
		if msg.Type == domain.EventPhaseComplete {
			m.setStatus(fmt.Sprintf("%s complete", phaseName(msg.Completed)), false)
		}
		return m, tea.Batch(
			waitForEvent(m.events),
			tea.SetWindowTitle(windowTitle(m.state)),
		)

	case noticeMsg:
		m.setStatus(string(msg), false)
		return m, nil

	case engineClosedMsg:
		return m, tea.Quit
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd domain.Command
	switch msg.String() {
	case " ":
		cmd = domain.CommandToggle
	case "r":
		cmd = domain.CommandReset
	case "s":
		cmd = domain.CommandSkip
	case "m":
		cmd = domain.CommandSwitchMode
	case "b":
		cmd = domain.CommandNextBackground
	case "p":
		cmd = domain.CommandPowerSave
	case "q", "esc":
		return m, tea.Quit
	case ":", "/":
		m.typing = true
		m.input.Reset()
		focus := m.input.Focus()
		return m, focus
	default:
		return m, nil
	}
	return m.run(cmd)
}

func (m model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.typing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		line := m.input.Value()
		m.typing = false
		m.input.Blur()
		m.input.Reset()
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		cmd, err := m.parser.Parse(line)
		if err != nil {
			m.setStatus(fmt.Sprintf("unknown command %q", strings.TrimSpace(line)), true)
			return m, nil
		}
		return m.run(cmd)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run dispatches cmd and refreshes the snapshot so the next frame never
// lags behind the key press.
func (m model) run(cmd domain.Command) (tea.Model, tea.Cmd) {
	if cmd == domain.CommandQuit {
		return m, tea.Quit
	}
	if err := m.ctrl.Dispatch(cmd); err != nil {
		if errors.Is(err, domain.ErrUnknownCommand) {
			m.setStatus(fmt.Sprintf("cannot %s here", cmd), true)
		} else {
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}
	m.status = ""
	m.state = m.ctrl.State()
	return m, tea.SetWindowTitle(windowTitle(m.state))
}

func (m *model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m model) View() string {
	s := m.state
	var lines []string

	lines = append(lines, modeStyle.Render(strings.ToUpper(modeName(s.Mode))))
	lines = append(lines, "")
	lines = append(lines, phaseStyle.Render(s.PhaseLabel()))

	clock := clockStyle
	if !s.IsRunning {
		clock = clockPausedStyle
	}
	lines = append(lines, clock.Render(s.FormattedRemaining()))

	if !s.PowerSaveMode {
		lines = append(lines, "", m.bar.ViewAs(s.Progress()))
	}
	if s.ShowsSessions() {
		lines = append(lines, "", sessionDots(s.CompletedFocusSessions))
	}

	lines = append(lines, "")
	switch {
	case m.typing:
		lines = append(lines, m.input.View())
	case m.status != "" && m.failed:
		lines = append(lines, errorStyle.Render(m.status))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	default:
		lines = append(lines, "")
	}

	if !s.PowerSaveMode {
		lines = append(lines, "", hintStyle.Render(s.ActiveBackground().Name+" · "+helpLine))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, lines...)
	bg := lipgloss.Color(backgroundColor(s))
	frame := lipgloss.NewStyle().Background(bg).Padding(1, 4)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, frame.Render(body),
			lipgloss.WithWhitespaceBackground(bg))
	}
	return frame.Render(body)
}

// ── Helpers ──────────────────────────────────────────────────────

func sessionDots(completed int) string {
	var b strings.Builder
	for i := 0; i < domain.SessionsBeforeLongBreak; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i < completed {
			b.WriteString(dotOnStyle.Render("●"))
		} else {
			b.WriteString(dotOffStyle.Render("○"))
		}
	}
	return b.String()
}

func backgroundColor(s domain.TimerState) string {
	bg := s.ActiveBackground()
	switch bg.Kind {
	case domain.BackgroundSolid:
		return bg.Color
	case domain.BackgroundImage:
		if c, ok := imageTints[bg.Asset]; ok {
			return c
		}
	}
	return customTint
}

func modeName(m domain.Mode) string {
	if m == domain.ModeDeepWork {
		return "Deep Work"
	}
	return "Pomodoro"
}

func phaseName(p domain.Phase) string {
	switch p {
	case domain.PhaseShortBreak:
		return "Break"
	case domain.PhaseLongBreak:
		return "Long break"
	default:
		return "Focus"
	}
}

func windowTitle(s domain.TimerState) string {
	title := s.FormattedRemaining() + " " + s.PhaseLabel()
	if !s.IsRunning {
		title += " (paused)"
	}
	return title
}
