// Package sched runs deferred work for a single game session on one
// goroutine. Tasks fire in order of their due time; tasks due at the same
// instant fire in the order they were scheduled.
package sched

import (
	"container/heap"
	"errors"
	"sync/atomic"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the task from firing again. Safe to call more than once.
	Cancel()
}

// Scheduler is the contract the game core schedules against.
type Scheduler interface {
	Now() time.Time
	// After runs fn once, d from now.
	After(d time.Duration, fn func()) Task
	// Every runs fn every d, starting d from now, until cancelled.
	Every(d time.Duration, fn func()) Task
}

// ErrStopped is returned by Loop.Do once the loop has exited.
var ErrStopped = errors.New("sched: loop stopped")

// minInterval keeps a zero or negative period from spinning the queue.
const minInterval = time.Millisecond

type task struct {
	at        time.Time
	seq       uint64
	every     time.Duration
	fn        func()
	cancelled atomic.Bool
	index     int
}

func (t *task) Cancel() {
	t.cancelled.Store(true)
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// queue is the ordering core shared by Manual and Loop. It is not safe for
// concurrent use on its own.
type queue struct {
	tasks taskHeap
	seq   uint64
}

func (q *queue) schedule(at time.Time, every time.Duration, fn func()) *task {
	q.seq++
	t := &task{at: at, seq: q.seq, every: every, fn: fn}
	heap.Push(&q.tasks, t)
	return t
}

// next returns the due time of the earliest live task.
func (q *queue) next() (time.Time, bool) {
	for q.tasks.Len() > 0 {
		t := q.tasks[0]
		if !t.cancelled.Load() {
			return t.at, true
		}
		heap.Pop(&q.tasks)
	}
	return time.Time{}, false
}

// popDue removes the earliest live task due at or before now and returns it
// with the instant it was due. Recurring tasks are re-queued one period later,
// behind anything already scheduled for that instant.
func (q *queue) popDue(now time.Time) (*task, time.Time) {
	for q.tasks.Len() > 0 {
		t := q.tasks[0]
		if t.cancelled.Load() {
			heap.Pop(&q.tasks)
			continue
		}
		if t.at.After(now) {
			return nil, time.Time{}
		}
		heap.Pop(&q.tasks)
		due := t.at
		if t.every > 0 {
			q.seq++
			t.at = t.at.Add(t.every)
			t.seq = q.seq
			heap.Push(&q.tasks, t)
		}
		return t, due
	}
	return nil, time.Time{}
}

func (q *queue) pending() int {
	n := 0
	for _, t := range q.tasks {
		if !t.cancelled.Load() {
			n++
		}
	}
	return n
}

func interval(d time.Duration) time.Duration {
	if d < minInterval {
		return minInterval
	}
	return d
}
