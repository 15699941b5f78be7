package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*********** fakes for deterministic testing ***********/

type fakeTimer struct {
	d         time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// fakeHost hands out handles and fires them only when a test says so.
type fakeHost struct {
	next    TimerHandle
	timers  map[TimerHandle]*fakeTimer
	cancels int
}

func newFakeHost() *fakeHost {
	return &fakeHost{timers: make(map[TimerHandle]*fakeTimer)}
}

func (h *fakeHost) Schedule(d time.Duration, fn func()) TimerHandle {
	h.next++
	h.timers[h.next] = &fakeTimer{d: d, fn: fn}
	return h.next
}

func (h *fakeHost) Cancel(id TimerHandle) {
	h.cancels++
	if t, ok := h.timers[id]; ok {
		t.cancelled = true
	}
}

// elapse simulates the host delivering the timer; cancelled or already fired
// timers are dropped the way a real host would.
func (h *fakeHost) elapse(id TimerHandle) {
	t, ok := h.timers[id]
	if !ok || t.cancelled || t.fired {
		return
	}
	t.fired = true
	t.fn()
}

func (h *fakeHost) live() int {
	n := 0
	for _, t := range h.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

type shown struct{ title, message string }

type recordingPresenter struct {
	calls []shown
}

func (p *recordingPresenter) ShowMessage(title, message string) {
	p.calls = append(p.calls, shown{title, message})
}

func newTestScheduler(opts ...Option) (*Scheduler, *fakeHost, *recordingPresenter) {
	h := newFakeHost()
	p := &recordingPresenter{}
	return NewScheduler(h, p, opts...), h, p
}

/*********** tests ***********/

func TestMinutesToDuration(t *testing.T) {
	assert.Equal(t, int64(1_500_000), MinutesToDuration(25).Milliseconds())
	assert.Equal(t, int64(60_000), MinutesToDuration(1).Milliseconds())

	largest := MinutesToDuration(MaxIntervalMinutes)
	assert.Positive(t, int64(largest))
	assert.Equal(t, int64(MaxIntervalMinutes), int64(largest/time.Minute))
}

func TestNewScheduler_StartsStopped(t *testing.T) {
	s, h, _ := newTestScheduler()
	assert.Equal(t, Stopped, s.State())
	_, armed := s.Pending()
	assert.False(t, armed)
	assert.Zero(t, h.live())
}

func TestStart_ArmsOneTimerForInterval(t *testing.T) {
	for _, m := range []int{1, 5, 25, 90} {
		s, h, _ := newTestScheduler()
		require.NoError(t, s.Start(m))

		assert.Equal(t, Running, s.State())
		id, armed := s.Pending()
		require.True(t, armed)
		assert.Equal(t, 1, h.live())
		assert.Equal(t, time.Duration(m)*time.Minute, h.timers[id].d)
	}
}

func TestStart_RejectsNonPositive(t *testing.T) {
	s, h, _ := newTestScheduler()
	for _, m := range []int{0, -1, -25, MaxIntervalMinutes + 1, 200_000_000} {
		err := s.Start(m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInterval))
		var ie *IntervalError
		assert.True(t, errors.As(err, &ie))
		assert.Equal(t, Stopped, s.State())
	}
	assert.Zero(t, h.live())
}

func TestStartInput_InvalidLeavesRunningUntouched(t *testing.T) {
	s, h, _ := newTestScheduler()
	require.NoError(t, s.StartInput("10"))
	before, _ := s.Pending()

	for _, in := range []string{"", "abc", "2.5", "0", "-3", "1e3"} {
		err := s.StartInput(in)
		assert.ErrorIs(t, err, ErrInvalidInterval, "input %q", in)
	}

	after, armed := s.Pending()
	assert.True(t, armed)
	assert.Equal(t, before, after)
	assert.Equal(t, Running, s.State())
	assert.Equal(t, 10, s.Status().Minutes)
	assert.Equal(t, 1, h.live())
}

func TestStartInput_RejectsOverflowingInterval(t *testing.T) {
	s, h, _ := newTestScheduler()
	err := s.StartInput("200000000")
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, h.live())

	require.NoError(t, s.Start(MaxIntervalMinutes))
	id, _ := s.Pending()
	assert.Positive(t, int64(h.timers[id].d))
}

func TestStartInput_TrimsWhitespace(t *testing.T) {
	s, _, _ := newTestScheduler()
	require.NoError(t, s.StartInput("  25 \n"))
	assert.Equal(t, 25*time.Minute, s.Status().Interval)
}

func TestStart_WhileRunningReplacesTimer(t *testing.T) {
	s, h, _ := newTestScheduler()
	require.NoError(t, s.Start(10))
	first, _ := s.Pending()
	require.NoError(t, s.Start(3))
	second, _ := s.Pending()

	assert.NotEqual(t, first, second)
	assert.True(t, h.timers[first].cancelled)
	assert.Equal(t, 1, h.live())
	assert.Equal(t, 3*time.Minute, h.timers[second].d)
}

func TestStop_CancelsPending_NoPresentAfterStop(t *testing.T) {
	s, h, p := newTestScheduler()
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()

	s.Stop()
	assert.Equal(t, Stopped, s.State())
	assert.True(t, h.timers[id].cancelled)

	// even if the host delivers it anyway, nothing is shown
	h.timers[id].cancelled = false
	h.elapse(id)
	assert.Empty(t, p.calls)
	assert.Zero(t, h.live())
}

func TestStop_Idempotent(t *testing.T) {
	s, h, _ := newTestScheduler()
	require.NoError(t, s.Start(1))
	s.Stop()
	cancels := h.cancels
	s.Stop()
	assert.Equal(t, cancels, h.cancels)
	assert.Equal(t, Stopped, s.State())

	fresh, fh, _ := newTestScheduler()
	fresh.Stop()
	assert.Zero(t, fh.cancels)
}

func TestOnFire_RearmsExactlyOnce(t *testing.T) {
	s, h, p := newTestScheduler()
	require.NoError(t, s.Start(2))

	for i := 1; i <= 5; i++ {
		id, armed := s.Pending()
		require.True(t, armed)
		h.elapse(id)

		assert.Len(t, p.calls, i)
		assert.Equal(t, 1, h.live())
		next, _ := s.Pending()
		assert.NotEqual(t, id, next)
		assert.Equal(t, 2*time.Minute, h.timers[next].d)
	}
	assert.Equal(t, 5, s.Status().Fired)
}

func TestOnFire_WhenStoppedIsNoop(t *testing.T) {
	s, h, p := newTestScheduler()
	s.OnFire()
	assert.Empty(t, p.calls)
	assert.Zero(t, h.live())
}

func TestScenario_OneMinuteElapse(t *testing.T) {
	s, h, p := newTestScheduler()
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	assert.Equal(t, time.Minute, h.timers[id].d)

	h.elapse(id)

	require.Len(t, p.calls, 1)
	got := Tip{Title: p.calls[0].title, Message: p.calls[0].message}
	assert.True(t, DefaultTips.Contains(got))
	assert.Equal(t, got, s.Status().Last)
	assert.Equal(t, Running, s.State())
	_, armed := s.Pending()
	assert.True(t, armed)
}

func TestOnFire_PresenterStopsScheduler(t *testing.T) {
	h := newFakeHost()
	var s *Scheduler
	s = NewScheduler(h, PresenterFunc(func(string, string) { s.Stop() }))
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)

	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, h.live())
}

func TestOnFire_UsesInjectedPicker(t *testing.T) {
	tips := TipTable{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	s, h, p := newTestScheduler(WithTips(tips), WithRand(func(n int) int { return n - 1 }))
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)
	require.Len(t, p.calls, 1)
	assert.Equal(t, shown{"c", "3"}, p.calls[0])
}

func TestOnChange_ReceivesTransitions(t *testing.T) {
	var states []RunState
	s, h, _ := newTestScheduler(WithOnChange(func(st Status) { states = append(states, st.State) }))
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)
	s.Stop()
	s.Stop()
	assert.Equal(t, []RunState{Running, Running, Stopped}, states)
}

func TestShutdown_ReleasesTimer(t *testing.T) {
	s, h, _ := newTestScheduler()
	require.NoError(t, s.Start(5))
	s.Shutdown()
	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, h.live())
	s.Shutdown()
}

func TestAcknowledge_HoldsTimerUntilDismissed(t *testing.T) {
	s, h, p := newTestScheduler(WithAcknowledge())
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)

	require.Len(t, p.calls, 1)
	assert.Equal(t, Running, s.State())
	assert.True(t, s.Status().Awaiting)
	_, armed := s.Pending()
	assert.False(t, armed)
	assert.Zero(t, h.live())

	s.Acknowledge()
	assert.False(t, s.Status().Awaiting)
	next, armed := s.Pending()
	require.True(t, armed)
	assert.Equal(t, time.Minute, h.timers[next].d)
	assert.Equal(t, 1, h.live())

	// a second acknowledge has nothing to release
	s.Acknowledge()
	assert.Equal(t, 1, h.live())
}

func TestAcknowledge_AfterStopDoesNotArm(t *testing.T) {
	s, h, _ := newTestScheduler(WithAcknowledge())
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)

	s.Stop()
	assert.False(t, s.Status().Awaiting)
	s.Acknowledge()
	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, h.live())
}

func TestAcknowledge_RestartClearsAwaiting(t *testing.T) {
	s, h, _ := newTestScheduler(WithAcknowledge())
	require.NoError(t, s.Start(1))
	id, _ := s.Pending()
	h.elapse(id)

	require.NoError(t, s.Start(5))
	assert.False(t, s.Status().Awaiting)
	s.Acknowledge()
	assert.Equal(t, 1, h.live())
}
