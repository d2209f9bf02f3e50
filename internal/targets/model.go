package targets

import (
	"time"

	"targetshot/internal/geom"
	"targetshot/internal/render"
)

type Kind string

const (
	KindUFO     = Kind("ufo")
	KindBalloon = Kind("balloon")
	KindMonster = Kind("monster")
)

// Kinds is the fixed set a spawn draws from.
var Kinds = []Kind{KindUFO, KindBalloon, KindMonster}

type Target struct {
	ID        int
	Kind      Kind
	Pos       geom.Point
	Handle    render.Handle
	Hit       bool
	SpawnedAt time.Time
}
