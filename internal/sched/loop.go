package sched

import (
	"context"
	"sync"
	"time"
)

// Loop is a wall-clock Scheduler. Scheduled tasks and functions handed to Do
// all run on the goroutine that calls Run, one at a time, so state touched
// only from those callbacks needs no locking.
type Loop struct {
	mu     sync.Mutex
	q      queue
	posted chan func()
	wake   chan struct{}
	done   chan struct{}
	clock  func() time.Time
}

func NewLoop() *Loop {
	return &Loop{
		posted: make(chan func()),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		clock:  time.Now,
	}
}

func (l *Loop) Now() time.Time {
	return l.clock()
}

func (l *Loop) After(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	t := l.q.schedule(l.clock().Add(d), 0, fn)
	l.mu.Unlock()
	l.poke()
	return t
}

func (l *Loop) Every(d time.Duration, fn func()) Task {
	d = interval(d)
	l.mu.Lock()
	t := l.q.schedule(l.clock().Add(d), d, fn)
	l.mu.Unlock()
	l.poke()
	return t
}

// Do runs fn on the loop goroutine and returns once it has been picked up.
// It fails if ctx ends first or the loop has stopped.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	select {
	case l.posted <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.runDue()

		wait := time.Hour
		l.mu.Lock()
		if at, ok := l.q.next(); ok {
			wait = at.Sub(l.clock())
		}
		l.mu.Unlock()
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posted:
			fn()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

func (l *Loop) runDue() {
	for {
		l.mu.Lock()
		t, _ := l.q.popDue(l.clock())
		l.mu.Unlock()
		if t == nil {
			return
		}
		t.fn()
	}
}

func (l *Loop) poke() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
