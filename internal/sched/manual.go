package sched

import "time"

// Manual is a Scheduler on a virtual clock. Time only moves when Advance is
// called, which makes timer-driven game logic testable without sleeping.
type Manual struct {
	now time.Time
	q   queue
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	return m.q.schedule(m.now.Add(d), 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Task {
	d = interval(d)
	return m.q.schedule(m.now.Add(d), d, fn)
}

// Advance moves the clock forward by d, running every task that falls due on
// the way. The clock reads each task's due time while its callback runs, so
// tasks scheduled from inside a callback are placed relative to that instant.
func (m *Manual) Advance(d time.Duration) {
	end := m.now.Add(d)
	for {
		t, due := m.q.popDue(end)
		if t == nil {
			break
		}
		if due.After(m.now) {
			m.now = due
		}
		t.fn()
	}
	m.now = end
}

// Pending returns the number of live tasks still queued.
func (m *Manual) Pending() int {
	return m.q.pending()
}
