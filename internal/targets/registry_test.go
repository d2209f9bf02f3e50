package targets

import (
	"math/rand"
	"testing"
	"time"

	"targetshot/internal/geom"
	"targetshot/internal/render"
	"targetshot/internal/sched"
)

func newTestRegistry(seed int64) (*Registry, *sched.Manual, *render.Memory) {
	clock := sched.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	view := render.NewMemory(geom.Size{W: cfg.Size, H: cfg.Size})
	return NewRegistry(clock, view, rand.New(rand.NewSource(seed)), cfg), clock, view
}

// place registers a target at a fixed position, bypassing the random draw.
func place(r *Registry, x, y int) *Target {
	t := r.Spawn()
	r.view.RemoveTarget(t.Handle)
	t.Pos = geom.Pt(x, y)
	t.Handle = r.view.SpawnTarget(string(t.Kind), t.Pos)
	return t
}

func TestRegistry_Spawn(t *testing.T) {
	r, _, view := newTestRegistry(1)
	target := r.Spawn()

	if target.ID != 0 {
		t.Errorf("first target ID = %d, want 0", target.ID)
	}
	if target.Handle == "" {
		t.Error("target should have a visual handle")
	}
	if target.Hit {
		t.Error("new target should not be hit")
	}
	if r.Len() != 1 || view.Targets() != 1 {
		t.Errorf("Len() = %d, rendered = %d; want 1, 1", r.Len(), view.Targets())
	}
	if r.NextID() != 1 {
		t.Errorf("NextID() = %d, want 1", r.NextID())
	}
}

func TestRegistry_Spawn_AutoIncrement(t *testing.T) {
	r, _, _ := newTestRegistry(1)
	t1 := r.Spawn()
	t2 := r.Spawn()
	t3 := r.Spawn()

	if t1.ID != 0 || t2.ID != 1 || t3.ID != 2 {
		t.Errorf("IDs = %d, %d, %d; want 0, 1, 2", t1.ID, t2.ID, t3.ID)
	}
}

func TestRegistry_Spawn_WithinBounds(t *testing.T) {
	r, _, view := newTestRegistry(42)
	bounds := r.Bounds()

	for i := 0; i < 2000; i++ {
		target := r.Spawn()
		rect, ok := view.TargetRect(target.Handle)
		if !ok {
			t.Fatal("spawned target has no rendered rect")
		}
		if !rect.Within(bounds) {
			t.Fatalf("target %d rect %+v outside bounds %+v", target.ID, rect, bounds)
		}
		r.Remove(target.ID)
	}
}

func TestRegistry_Spawn_TinyArea(t *testing.T) {
	clock := sched.NewManual(time.Now())
	cfg := DefaultConfig()
	cfg.Area = geom.Size{W: 100, H: 100}
	r := NewRegistry(clock, render.NewMemory(geom.Size{W: 80, H: 80}), rand.New(rand.NewSource(1)), cfg)

	target := r.Spawn()
	if target.Pos != geom.Pt(cfg.Margin, cfg.Margin) {
		t.Errorf("Pos = %v, want pinned to margin", target.Pos)
	}
}

func TestRegistry_Spawn_UsesEveryKind(t *testing.T) {
	r, _, _ := newTestRegistry(7)
	seen := make(map[Kind]bool)
	for i := 0; i < 300; i++ {
		seen[r.Spawn().Kind] = true
	}
	for _, k := range Kinds {
		if !seen[k] {
			t.Errorf("kind %q never spawned", k)
		}
	}
}

func TestRegistry_Expiry(t *testing.T) {
	r, clock, view := newTestRegistry(1)
	var expired []*Target
	r.OnExpire = func(t *Target) { expired = append(expired, t) }

	target := r.Spawn()
	clock.Advance(DefaultLifetime - time.Millisecond)
	if r.Get(target.ID) == nil {
		t.Fatal("target removed before its lifetime")
	}

	clock.Advance(time.Millisecond)
	if r.Get(target.ID) != nil {
		t.Error("target should expire after its lifetime")
	}
	if view.Targets() != 0 {
		t.Error("expired target should release its handle")
	}
	if len(expired) != 1 || expired[0] != target {
		t.Errorf("OnExpire calls = %d, want 1", len(expired))
	}
}

func TestRegistry_Expiry_SkipsHitTargets(t *testing.T) {
	r, clock, _ := newTestRegistry(1)
	calls := 0
	r.OnExpire = func(*Target) { calls++ }

	target := r.Spawn()
	r.MarkHit(target.ID)
	clock.Advance(DefaultLifetime)

	if r.Get(target.ID) != nil {
		t.Error("hit target should still be removed at expiry")
	}
	if calls != 0 {
		t.Errorf("OnExpire calls = %d, want 0 for a hit target", calls)
	}
}

func TestRegistry_Remove_Idempotent(t *testing.T) {
	r, _, view := newTestRegistry(1)
	target := r.Spawn()
	r.Spawn()

	if r.Remove(target.ID) == nil {
		t.Fatal("first Remove() should report the removed target")
	}
	if r.Remove(target.ID) != nil {
		t.Error("second Remove() should be a no-op")
	}
	if r.Len() != 1 || view.Targets() != 1 {
		t.Errorf("Len() = %d, rendered = %d; want 1, 1", r.Len(), view.Targets())
	}
}

func TestRegistry_Remove_Nonexistent(t *testing.T) {
	r, _, _ := newTestRegistry(1)
	if r.Remove(999) != nil {
		t.Error("Remove() of unknown id should return nil")
	}
}

func TestRegistry_StaleTimerAfterReset(t *testing.T) {
	r, clock, _ := newTestRegistry(1)
	r.Spawn()
	clock.Advance(2 * time.Second)

	r.Reset()
	fresh := r.Spawn()
	if fresh.ID != 0 {
		t.Fatalf("ID after Reset() = %d, want 0", fresh.ID)
	}

	// The first session's timer for id 0 fires here.
	clock.Advance(time.Second)
	if r.Get(0) != fresh {
		t.Error("stale expiry timer removed a target from the new session")
	}
}

func TestRegistry_FindContaining(t *testing.T) {
	r, _, _ := newTestRegistry(1)
	target := place(r, 100, 100)

	if got := r.FindContaining(geom.Pt(140, 140)); got != target {
		t.Errorf("FindContaining(inside) = %v, want target %d", got, target.ID)
	}
	if got := r.FindContaining(geom.Pt(180, 180)); got != target {
		t.Error("bottom-right corner should be inclusive")
	}
	if got := r.FindContaining(geom.Pt(99, 140)); got != nil {
		t.Errorf("FindContaining(outside) = %v, want nil", got)
	}
}

func TestRegistry_FindContaining_PrefersNewest(t *testing.T) {
	r, _, _ := newTestRegistry(1)
	place(r, 100, 100)
	newer := place(r, 140, 140)

	if got := r.FindContaining(geom.Pt(150, 150)); got != newer {
		t.Errorf("overlap should resolve to the newest target, got %v", got)
	}
}

func TestRegistry_FindContaining_IncludesHit(t *testing.T) {
	r, _, _ := newTestRegistry(1)
	place(r, 100, 100)
	newer := place(r, 140, 140)
	r.MarkHit(newer.ID)

	if got := r.FindContaining(geom.Pt(150, 150)); got != newer {
		t.Errorf("a hit target still on screen should take the shot, got %v", got)
	}
	if got := r.FindContaining(geom.Pt(200, 200)); got != newer {
		t.Errorf("FindContaining(hit target only) = %v, want target %d", got, newer.ID)
	}
}

func TestRegistry_MarkHit(t *testing.T) {
	r, _, view := newTestRegistry(1)
	target := r.Spawn()

	if r.MarkHit(target.ID) != target {
		t.Fatal("MarkHit() should return the target")
	}
	if r.MarkHit(target.ID) != nil {
		t.Error("second MarkHit() should return nil")
	}
	e, _ := view.Get(target.Handle)
	if !e.Hit {
		t.Error("renderer should show the hit state")
	}
}

func TestRegistry_ClearAll(t *testing.T) {
	r, _, view := newTestRegistry(1)
	r.Spawn()
	r.Spawn()
	r.Spawn()

	r.ClearAll()

	if r.Len() != 0 || view.Targets() != 0 {
		t.Errorf("after ClearAll(), Len() = %d, rendered = %d", r.Len(), view.Targets())
	}
	if next := r.Spawn(); next.ID != 3 {
		t.Errorf("ClearAll() should keep ids increasing, got %d", next.ID)
	}
}
