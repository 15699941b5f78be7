package core

import (
	"log/slog"
	"time"
)

type RunState int

const (
	Stopped RunState = iota
	Running
)

func (s RunState) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Running:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// TimerHandle identifies a callback registered with a Host.
type TimerHandle uint64

// Host is the event loop the scheduler runs on. Callbacks passed to Schedule
// must run on the same goroutine that calls into the Scheduler, and a
// cancelled handle must never run.
type Host interface {
	Schedule(d time.Duration, fn func()) TimerHandle
	Cancel(h TimerHandle)
}

// Presenter shows a reminder to the user.
type Presenter interface {
	ShowMessage(title, message string)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(title, message string)

func (f PresenterFunc) ShowMessage(title, message string) { f(title, message) }

type Status struct {
	State    RunState
	Minutes  int
	Interval time.Duration
	Armed    bool
	Fired    int
	Last     Tip
	Awaiting bool // shown reminder not yet acknowledged
}

// Scheduler turns an interval and a run flag into a sequence of reminders.
// It is not safe for concurrent use; every call, including the callbacks it
// registers, is expected on the host loop.
type Scheduler struct {
	host      Host
	presenter Presenter
	tips      TipTable
	intn      func(n int) int
	log       *slog.Logger

	state    RunState
	minutes  int
	interval time.Duration
	pending  TimerHandle
	armed    bool
	fired    int
	last     Tip

	ackRequired bool
	awaiting    bool

	// optional subscriber (e.g., TUI refresh)
	onChange func(Status)
}

type Option func(*Scheduler)

func WithTips(t TipTable) Option {
	return func(s *Scheduler) { s.tips = t }
}

// WithRand sets the index picker used to choose tips.
func WithRand(intn func(n int) int) Option {
	return func(s *Scheduler) { s.intn = intn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAcknowledge holds the next timer until Acknowledge is called, for
// presenters that return before the user has dismissed the reminder.
func WithAcknowledge() Option {
	return func(s *Scheduler) { s.ackRequired = true }
}

func WithOnChange(fn func(Status)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

func NewScheduler(host Host, presenter Presenter, opts ...Option) *Scheduler {
	s := &Scheduler{
		host:      host,
		presenter: presenter,
		tips:      DefaultTips,
		log:       slog.New(slog.DiscardHandler),
		state:     Stopped,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) SetOnChange(fn func(Status)) {
	s.onChange = fn
}

func (s *Scheduler) State() RunState { return s.state }

// Pending returns the handle of the armed timer, if any.
func (s *Scheduler) Pending() (TimerHandle, bool) {
	return s.pending, s.armed
}

func (s *Scheduler) Status() Status {
	return Status{
		State:    s.state,
		Minutes:  s.minutes,
		Interval: s.interval,
		Armed:    s.armed,
		Fired:    s.fired,
		Last:     s.last,
		Awaiting: s.awaiting,
	}
}

// Start validates minutes and arms the first reminder. On an invalid value
// the scheduler is left exactly as it was.
func (s *Scheduler) Start(minutes int) error {
	if err := ValidateMinutes(minutes); err != nil {
		return err
	}
	s.disarm()
	s.awaiting = false
	s.state = Running
	s.minutes = minutes
	s.interval = MinutesToDuration(minutes)
	s.log.Info("reminders started", "minutes", minutes)
	s.arm()
	s.changed()
	return nil
}

// StartInput parses raw user text and starts the scheduler.
func (s *Scheduler) StartInput(raw string) error {
	minutes, err := ParseInterval(raw)
	if err != nil {
		s.log.Warn("rejected interval", "input", raw)
		return err
	}
	return s.Start(minutes)
}

// Stop cancels the pending reminder. Calling it while stopped does nothing.
func (s *Scheduler) Stop() {
	if s.state == Stopped && !s.armed {
		return
	}
	s.state = Stopped
	s.awaiting = false
	s.disarm()
	s.log.Info("reminders stopped")
	s.changed()
}

// Shutdown releases the pending timer before the host goes away.
func (s *Scheduler) Shutdown() {
	s.Stop()
}

// OnFire presents one tip and re-arms the timer once the presenter returns
// (or, with WithAcknowledge, once the reminder is acknowledged), so reminders
// never stack while one is still on screen.
func (s *Scheduler) OnFire() {
	if s.state != Running {
		return
	}
	s.armed = false
	s.pending = 0

	if tip, ok := s.tips.Pick(s.intn); ok {
		s.fired++
		s.last = tip
		s.log.Debug("showing reminder", "title", tip.Title)
		s.presenter.ShowMessage(tip.Title, tip.Message)
	}

	// the presenter may have stopped or restarted us
	if s.state == Running && !s.armed {
		if s.ackRequired {
			s.awaiting = true
		} else {
			s.arm()
		}
	}
	s.changed()
}

// Acknowledge reports that the shown reminder was dismissed and arms the next
// one. It does nothing unless a reminder is awaiting acknowledgement.
func (s *Scheduler) Acknowledge() {
	if !s.awaiting {
		return
	}
	s.awaiting = false
	if s.state == Running && !s.armed {
		s.arm()
	}
	s.changed()
}

func (s *Scheduler) arm() {
	s.pending = s.host.Schedule(s.interval, s.OnFire)
	s.armed = true
	s.log.Info("next reminder scheduled", "minutes", s.minutes)
}

func (s *Scheduler) disarm() {
	if s.armed {
		s.host.Cancel(s.pending)
	}
	s.pending = 0
	s.armed = false
}

func (s *Scheduler) changed() {
	if s.onChange != nil {
		s.onChange(s.Status())
	}
}
