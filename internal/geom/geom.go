// Package geom holds the play-area coordinate types shared by the game core
// and its renderers. Coordinates are play-area-local: origin at the top-left,
// x to the right, y downwards.
package geom

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y int
	W, H int
}

func NewRect(at Point, size Size) Rect {
	return Rect{X: at.X, Y: at.Y, W: size.W, H: size.H}
}

func (r Rect) Right() int {
	return r.X + r.W
}

func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains reports whether p lies inside r. Both edges are inclusive, so a
// point on the right or bottom border still counts.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Within reports whether r lies entirely inside outer.
func (r Rect) Within(outer Rect) bool {
	return r.X >= outer.X && r.Y >= outer.Y && r.Right() <= outer.Right() && r.Bottom() <= outer.Bottom()
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Inset shrinks r by m on every side.
func (r Rect) Inset(m int) Rect {
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}
