package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ezchuang/wellness/internal/core"
)

// fireMsg is delivered by the tea runtime when a scheduled callback is due.
type fireMsg struct {
	id core.TimerHandle
}

type pendingCallback struct {
	fn  func()
	due time.Time
}

// teaHost runs scheduler callbacks inside Update, so the bubbletea event loop
// is the only goroutine that ever touches the scheduler.
type teaHost struct {
	now     func() time.Time
	next    core.TimerHandle
	pending map[core.TimerHandle]pendingCallback
	queued  []tea.Cmd
}

func newTeaHost(now func() time.Time) *teaHost {
	if now == nil {
		now = time.Now
	}
	return &teaHost{
		now:     now,
		pending: make(map[core.TimerHandle]pendingCallback),
	}
}

func (h *teaHost) Schedule(d time.Duration, fn func()) core.TimerHandle {
	h.next++
	id := h.next
	h.pending[id] = pendingCallback{fn: fn, due: h.now().Add(d)}
	h.queued = append(h.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return fireMsg{id: id}
	}))
	return id
}

// Cancel drops id; its tick still arrives but finds nothing to run.
func (h *teaHost) Cancel(id core.TimerHandle) {
	delete(h.pending, id)
}

func (h *teaHost) dispatch(id core.TimerHandle) {
	cb, ok := h.pending[id]
	if !ok {
		return
	}
	delete(h.pending, id)
	cb.fn()
}

func (h *teaHost) deadline(id core.TimerHandle) (time.Time, bool) {
	cb, ok := h.pending[id]
	return cb.due, ok
}

// drain hands the ticks requested since the last Update to the runtime.
func (h *teaHost) drain() tea.Cmd {
	if len(h.queued) == 0 {
		return nil
	}
	cmds := h.queued
	h.queued = nil
	return tea.Batch(cmds...)
}
