// Package loop runs callbacks one at a time on a single goroutine. It is the
// host the scheduler uses when there is no terminal UI to drive it.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ezchuang/wellness/internal/core"
)

var ErrClosed = errors.New("loop closed")

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type timer struct {
	due    time.Time
	fn     func()
	cancel context.CancelFunc
}

type event struct {
	id core.TimerHandle // zero for posted work
	fn func()
}

// Loop implements core.Host. Schedule and Cancel may be called from any
// goroutine; callbacks only ever run inside Run.
type Loop struct {
	clock Clock

	mu     sync.Mutex
	next   core.TimerHandle
	timers map[core.TimerHandle]*timer

	events chan event
	done   chan struct{}
	once   sync.Once
}

func New(clock Clock) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{
		clock:  clock,
		timers: make(map[core.TimerHandle]*timer),
		events: make(chan event, 16),
		done:   make(chan struct{}),
	}
}

func (l *Loop) Schedule(d time.Duration, fn func()) core.TimerHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	ctx, cancel := context.WithCancel(context.Background())
	l.timers[id] = &timer{due: l.clock.Now().Add(d), fn: fn, cancel: cancel}

	ch := l.clock.After(d)
	go func() {
		select {
		case <-ch:
			l.send(event{id: id})
		case <-ctx.Done():
		case <-l.done:
		}
	}()
	return id
}

// Cancel forgets h. A tick for h that is already queued is dropped by Run.
func (l *Loop) Cancel(h core.TimerHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[h]; ok {
		t.cancel()
		delete(l.timers, h)
	}
}

// Deadline reports when h is due, if it is still pending.
func (l *Loop) Deadline(h core.TimerHandle) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.timers[h]
	if !ok {
		return time.Time{}, false
	}
	return t.due, true
}

// Pending is the number of scheduled callbacks that have not run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) error {
	if !l.send(event{fn: fn}) {
		return ErrClosed
	}
	return nil
}

// Invoke runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Invoke(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if err := l.Post(func() {
		defer close(ran)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Run executes callbacks until ctx is cancelled, then drops every pending
// timer. A Loop can be run only once.
func (l *Loop) Run(ctx context.Context) error {
	defer l.close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.dispatch(ev)
		}
	}
}

func (l *Loop) dispatch(ev event) {
	fn := ev.fn
	if ev.id != 0 {
		l.mu.Lock()
		t, ok := l.timers[ev.id]
		if ok {
			delete(l.timers, ev.id)
			t.cancel()
			fn = t.fn
		}
		l.mu.Unlock()
		if !ok {
			return
		}
	}
	if fn != nil {
		fn()
	}
}

func (l *Loop) send(ev event) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) close() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		defer l.mu.Unlock()
		for id, t := range l.timers {
			t.cancel()
			delete(l.timers, id)
		}
	})
}
