package render

import (
	"testing"

	"targetshot/internal/geom"
)

func TestMemory_SpawnTarget(t *testing.T) {
	m := NewMemory(geom.Size{W: 80, H: 80})
	h := m.SpawnTarget("ufo", geom.Pt(100, 50))

	if h == "" {
		t.Fatal("SpawnTarget() returned empty handle")
	}
	r, ok := m.TargetRect(h)
	if !ok {
		t.Fatal("TargetRect() reported missing handle")
	}
	want := geom.Rect{X: 100, Y: 50, W: 80, H: 80}
	if r != want {
		t.Errorf("TargetRect() = %+v, want %+v", r, want)
	}
	if m.Targets() != 1 {
		t.Errorf("Targets() = %d, want 1", m.Targets())
	}
}

func TestMemory_UniqueHandles(t *testing.T) {
	m := NewMemory(geom.Size{W: 80, H: 80})
	seen := make(map[Handle]bool)
	for i := 0; i < 100; i++ {
		h := m.SpawnTarget("balloon", geom.Pt(0, 0))
		if seen[h] {
			t.Fatalf("duplicate handle %q", h)
		}
		seen[h] = true
	}
}

func TestMemory_RemoveTarget_Idempotent(t *testing.T) {
	m := NewMemory(geom.Size{W: 80, H: 80})
	h := m.SpawnTarget("monster", geom.Pt(0, 0))

	m.RemoveTarget(h)
	m.RemoveTarget(h)

	if _, ok := m.TargetRect(h); ok {
		t.Error("TargetRect() should fail after removal")
	}
	if m.Targets() != 0 {
		t.Errorf("Targets() = %d, want 0", m.Targets())
	}
}

func TestMemory_MarkHit(t *testing.T) {
	m := NewMemory(geom.Size{W: 80, H: 80})
	h := m.SpawnTarget("ufo", geom.Pt(0, 0))
	m.MarkHit(h)

	e, ok := m.Get(h)
	if !ok || !e.Hit {
		t.Errorf("element = %+v, want Hit", e)
	}
}

func TestMemory_Markers(t *testing.T) {
	m := NewMemory(geom.Size{W: 80, H: 80})
	h := m.ShowMarker("miss", "-1", geom.Pt(5, 6))
	m.ShowMarker("hit", "+1", geom.Pt(7, 8))

	if m.Markers() != 2 {
		t.Fatalf("Markers() = %d, want 2", m.Markers())
	}
	if _, ok := m.TargetRect(h); ok {
		t.Error("markers should not report a target rect")
	}
	if e, ok := m.Get(h); !ok || e.Kind != "miss" || e.Text != "-1" || !e.Marker {
		t.Errorf("miss marker = %+v", e)
	}

	m.RemoveMarker(h)
	if m.Markers() != 1 {
		t.Errorf("Markers() after remove = %d, want 1", m.Markers())
	}
}
