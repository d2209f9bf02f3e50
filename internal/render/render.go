// Package render defines the port through which the game core places and
// removes visual elements, and an in-memory implementation of it.
package render

import (
	"sync"

	"targetshot/internal/geom"

	"github.com/google/uuid"
)

// Handle is an opaque reference to a rendered element.
type Handle string

// Renderer is implemented by whatever displays the play area. The core never
// touches presentation except through these calls.
type Renderer interface {
	SpawnTarget(kind string, at geom.Point) Handle
	// TargetRect reports the on-screen rectangle of a target in play-area
	// coordinates. ok is false once the handle has been removed.
	TargetRect(h Handle) (r geom.Rect, ok bool)
	MarkHit(h Handle)
	RemoveTarget(h Handle)
	ShowMarker(kind, text string, at geom.Point) Handle
	RemoveMarker(h Handle)
}

// Element is the state Memory keeps for one live handle.
type Element struct {
	Handle Handle
	Kind   string
	Text   string
	Rect   geom.Rect
	Hit    bool
	Marker bool
}

// Memory keeps rendered elements in a map. Targets occupy a fixed footprint;
// markers are points.
type Memory struct {
	mu        sync.Mutex
	footprint geom.Size
	elements  map[Handle]*Element
}

func NewMemory(footprint geom.Size) *Memory {
	return &Memory{
		footprint: footprint,
		elements:  make(map[Handle]*Element),
	}
}

func newHandle() Handle {
	return Handle(uuid.New().String())
}

func (m *Memory) SpawnTarget(kind string, at geom.Point) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := newHandle()
	m.elements[h] = &Element{Handle: h, Kind: kind, Rect: geom.NewRect(at, m.footprint)}
	return h
}

func (m *Memory) TargetRect(h Handle) (geom.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.elements[h]; ok && !e.Marker {
		return e.Rect, true
	}
	return geom.Rect{}, false
}

func (m *Memory) MarkHit(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.elements[h]; ok {
		e.Hit = true
	}
}

func (m *Memory) RemoveTarget(h Handle) {
	m.remove(h)
}

func (m *Memory) ShowMarker(kind, text string, at geom.Point) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := newHandle()
	m.elements[h] = &Element{Handle: h, Kind: kind, Text: text, Rect: geom.Rect{X: at.X, Y: at.Y}, Marker: true}
	return h
}

func (m *Memory) RemoveMarker(h Handle) {
	m.remove(h)
}

func (m *Memory) remove(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.elements, h)
}

// Get returns a copy of the element for h.
func (m *Memory) Get(h Handle) (Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.elements[h]; ok {
		return *e, true
	}
	return Element{}, false
}

// Targets returns the number of live target elements.
func (m *Memory) Targets() int {
	return m.count(false)
}

// Markers returns the number of live marker elements.
func (m *Memory) Markers() int {
	return m.count(true)
}

func (m *Memory) count(markers bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.elements {
		if e.Marker == markers {
			n++
		}
	}
	return n
}
