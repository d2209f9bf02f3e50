// Package feedback shows short-lived "+1" and "-1" markers over the play
// area.
package feedback

import (
	"time"

	"targetshot/internal/geom"
	"targetshot/internal/render"
	"targetshot/internal/sched"
)

type Kind string

const (
	KindHit  = Kind("hit")
	KindMiss = Kind("miss")
)

const DefaultDuration = 800 * time.Millisecond

type Marker struct {
	Handle render.Handle
	Kind   Kind
	Text   string
	At     geom.Point
}

// Emitter owns the live markers of one session. Like the target registry it
// runs on the session's scheduler goroutine.
type Emitter struct {
	sched    sched.Scheduler
	view     render.Renderer
	duration time.Duration
	markers  map[render.Handle]*Marker
}

func NewEmitter(s sched.Scheduler, view render.Renderer, duration time.Duration) *Emitter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Emitter{
		sched:    s,
		view:     view,
		duration: duration,
		markers:  make(map[render.Handle]*Marker),
	}
}

// Show displays text at the given point and removes it after the emitter's
// display duration.
func (e *Emitter) Show(at geom.Point, text string, kind Kind) *Marker {
	m := &Marker{
		Handle: e.view.ShowMarker(string(kind), text, at),
		Kind:   kind,
		Text:   text,
		At:     at,
	}
	e.markers[m.Handle] = m
	e.sched.After(e.duration, func() {
		e.Remove(m.Handle)
	})
	return m
}

// Remove takes a marker down. Unknown handles are ignored.
func (e *Emitter) Remove(h render.Handle) bool {
	if _, ok := e.markers[h]; !ok {
		return false
	}
	e.view.RemoveMarker(h)
	delete(e.markers, h)
	return true
}

func (e *Emitter) ClearAll() {
	for h := range e.markers {
		e.view.RemoveMarker(h)
	}
	e.markers = make(map[render.Handle]*Marker)
}

func (e *Emitter) Active() int {
	return len(e.markers)
}
