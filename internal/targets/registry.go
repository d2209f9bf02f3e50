package targets

import (
	"math/rand"
	"time"

	"targetshot/internal/geom"
	"targetshot/internal/render"
	"targetshot/internal/sched"
)

const (
	DefaultMargin   = 50
	DefaultSize     = 80
	DefaultLifetime = 3000 * time.Millisecond
)

type Config struct {
	Area     geom.Size
	Margin   int
	Size     int
	Lifetime time.Duration
}

func DefaultConfig() Config {
	return Config{
		Area:     geom.Size{W: 800, H: 600},
		Margin:   DefaultMargin,
		Size:     DefaultSize,
		Lifetime: DefaultLifetime,
	}
}

// Registry tracks the live targets of one session in spawn order. It is driven
// from a single scheduler goroutine and does no locking of its own.
type Registry struct {
	sched   sched.Scheduler
	view    render.Renderer
	rng     *rand.Rand
	cfg     Config
	targets []*Target
	nextID  int

	// OnExpire is called when a target that was never hit reaches the end of
	// its lifetime and is removed.
	OnExpire func(*Target)
}

func NewRegistry(s sched.Scheduler, view render.Renderer, rng *rand.Rand, cfg Config) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		sched: s,
		view:  view,
		rng:   rng,
		cfg:   cfg,
	}
}

func (r *Registry) Config() Config {
	return r.cfg
}

// Bounds is the rectangle every spawned target stays inside.
func (r *Registry) Bounds() geom.Rect {
	return geom.Rect{W: r.cfg.Area.W, H: r.cfg.Area.H}.Inset(r.cfg.Margin)
}

func (r *Registry) Spawn() *Target {
	id := r.nextID
	r.nextID++

	kind := Kinds[r.rng.Intn(len(Kinds))]
	pos := geom.Pt(r.coord(r.cfg.Area.W), r.coord(r.cfg.Area.H))
	target := &Target{
		ID:        id,
		Kind:      kind,
		Pos:       pos,
		Handle:    r.view.SpawnTarget(string(kind), pos),
		SpawnedAt: r.sched.Now(),
	}
	r.targets = append(r.targets, target)

	r.sched.After(r.cfg.Lifetime, func() {
		if r.Discard(target) && !target.Hit && r.OnExpire != nil {
			r.OnExpire(target)
		}
	})
	return target
}

// coord draws uniformly from [margin, extent-margin-size]. An extent too small
// to fit the target pins it to the margin.
func (r *Registry) coord(extent int) int {
	span := extent - 2*r.cfg.Margin - r.cfg.Size
	if span <= 0 {
		return r.cfg.Margin
	}
	return r.cfg.Margin + r.rng.Intn(span+1)
}

func (r *Registry) Get(id int) *Target {
	if i := r.index(id); i >= 0 {
		return r.targets[i]
	}
	return nil
}

// Remove drops the target and releases its handle. It returns the removed
// target, or nil if it was already gone.
func (r *Registry) Remove(id int) *Target {
	i := r.index(id)
	if i < 0 {
		return nil
	}
	t := r.targets[i]
	r.view.RemoveTarget(t.Handle)
	r.targets = append(r.targets[:i], r.targets[i+1:]...)
	return t
}

// Discard removes t only if that exact target is still registered. Timers
// armed in an earlier session use it so they cannot touch a newer target that
// reuses the same id after Reset.
func (r *Registry) Discard(t *Target) bool {
	if r.Get(t.ID) != t {
		return false
	}
	r.Remove(t.ID)
	return true
}

// MarkHit flags the target as hit. A hit target stays registered, and can
// still be shot, until its removal delay runs out.
func (r *Registry) MarkHit(id int) *Target {
	t := r.Get(id)
	if t == nil || t.Hit {
		return nil
	}
	t.Hit = true
	r.view.MarkHit(t.Handle)
	return t
}

// FindContaining returns the most recently spawned registered target whose
// rendered rectangle contains p, or nil. Targets already hit are included.
func (r *Registry) FindContaining(p geom.Point) *Target {
	for i := len(r.targets) - 1; i >= 0; i-- {
		t := r.targets[i]
		rect, ok := r.view.TargetRect(t.Handle)
		if !ok {
			continue
		}
		if rect.Contains(p) {
			return t
		}
	}
	return nil
}

func (r *Registry) Len() int {
	return len(r.targets)
}

// NextID is the id the next spawn will receive.
func (r *Registry) NextID() int {
	return r.nextID
}

func (r *Registry) ClearAll() {
	for _, t := range r.targets {
		r.view.RemoveTarget(t.Handle)
	}
	r.targets = nil
}

// Reset clears every target and restarts id numbering for a new session.
func (r *Registry) Reset() {
	r.ClearAll()
	r.nextID = 0
}

func (r *Registry) index(id int) int {
	for i, t := range r.targets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
