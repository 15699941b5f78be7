package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ezchuang/wellness/internal/core"
)

type keyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Start, k.Stop}, {k.Dismiss, k.Quit}}
}

var defaultKeys = keyMap{
	Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start reminders")),
	Stop:    key.NewBinding(key.WithKeys("esc", "ctrl+x"), key.WithHelp("esc", "stop reminders")),
	Dismiss: key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "dismiss")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#333333")).Background(lipgloss.Color("#5df4c4")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#113556"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d7263d"))
	dialogStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#5df4c4")).Padding(1, 3)
)

type Options struct {
	IntervalMinutes int
	Tips            core.TipTable
	Presenter       core.Presenter // desktop delivery; may be nil
	Logger          *slog.Logger
	Now             func() time.Time
}

type Model struct {
	scheduler *core.Scheduler
	host      *teaHost
	presenter core.Presenter
	now       func() time.Time

	input    textinput.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	started bool
	dialog  *core.Tip
	err     error

	width  int
	height int
	quit   bool
}

func NewModel(opts Options) (*Model, error) {
	if err := core.ValidateMinutes(opts.IntervalMinutes); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "minutes"
	ti.CharLimit = len(strconv.Itoa(core.MaxIntervalMinutes))
	ti.Width = 10
	ti.SetValue(strconv.Itoa(opts.IntervalMinutes))
	ti.Focus()

	m := &Model{
		host:      newTeaHost(opts.Now),
		presenter: opts.Presenter,
		now:       opts.Now,
		input:     ti,
		progress:  progress.New(progress.WithDefaultGradient()),
		help:      help.New(),
		keys:      defaultKeys,
	}

	// the dialog stays open after ShowMessage returns; re-arm on dismiss
	schedOpts := []core.Option{core.WithLogger(opts.Logger), core.WithAcknowledge()}
	if len(opts.Tips) > 0 {
		schedOpts = append(schedOpts, core.WithTips(opts.Tips))
	}
	m.scheduler = core.NewScheduler(m.host, m, schedOpts...)
	return m, nil
}

// Scheduler exposes the reminder scheduler so callers can shut it down.
func (m *Model) Scheduler() *core.Scheduler { return m.scheduler }

// ShowMessage opens the in-terminal dialog and forwards the reminder to the
// desktop presenter.
func (m *Model) ShowMessage(title, message string) {
	m.dialog = &core.Tip{Title: title, Message: message}
	if m.presenter != nil {
		m.presenter.ShowMessage(title, message)
	}
}

func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.scheduler.Shutdown()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink)
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.host.drain())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.scheduler.Shutdown()
			m.quit = true
			return tea.Quit
		}
		if m.dialog != nil {
			if key.Matches(msg, m.keys.Dismiss) {
				m.dialog = nil
				m.scheduler.Acknowledge()
			}
			return nil
		}
		switch {
		case key.Matches(msg, m.keys.Start):
			if err := m.scheduler.StartInput(m.input.Value()); err != nil {
				m.err = err
				return nil
			}
			m.err = nil
			m.started = true
			return nil
		case key.Matches(msg, m.keys.Stop):
			m.scheduler.Stop()
			m.err = nil
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd

	case fireMsg:
		m.host.dispatch(msg.id)

	case tickMsg:
		return tickCmd()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(20, min(60, msg.Width-12))
		m.help.Width = msg.Width

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) statusLine() string {
	st := m.scheduler.Status()
	switch {
	case st.State == core.Running:
		return fmt.Sprintf("Status: Running (Every %d mins)", st.Minutes)
	case m.started:
		return "Status: Stopped"
	default:
		return "Status: Ready to start"
	}
}

// untilNext is the time left before the armed reminder and the fraction of
// the interval already elapsed.
func (m *Model) untilNext() (time.Duration, float64) {
	st := m.scheduler.Status()
	id, armed := m.scheduler.Pending()
	if !armed || st.Interval <= 0 {
		return 0, 0
	}
	due, ok := m.host.deadline(id)
	if !ok {
		return 0, 0
	}
	remain := due.Sub(m.now())
	if remain < 0 {
		remain = 0
	}
	if remain > st.Interval {
		remain = st.Interval
	}
	return remain, float64(st.Interval-remain) / float64(st.Interval)
}

func (m *Model) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Desktop Wellness Reminder"))
	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Interval (minutes): "))
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Invalid Input: " + errorText(m.err)))
		b.WriteString("\n")
	}

	if st := m.scheduler.Status(); st.State == core.Running && st.Awaiting {
		b.WriteString("\nNext reminder is scheduled once you dismiss this one\n")
	} else if st.State == core.Running {
		remain, ratio := m.untilNext()
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Next reminder in %s\n", remain.Truncate(time.Second)))
		b.WriteString(m.progress.ViewAs(ratio))
		b.WriteString(fmt.Sprintf("\nReminders shown: %d\n", st.Fired))
	}

	if m.dialog != nil {
		box := dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.dialog.Title),
			"",
			m.dialog.Message,
			"",
			lipgloss.NewStyle().Faint(true).Render("[enter] dismiss"),
		))
		b.WriteString("\n")
		b.WriteString(box)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	if m.width == 0 || m.height == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func errorText(err error) string {
	if errors.Is(err, core.ErrInvalidInterval) {
		return core.ErrInvalidInterval.Error()
	}
	return err.Error()
}
