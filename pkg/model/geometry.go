package model

// Rect is an axis-aligned rectangle with its origin in the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Surface returns the rectangle's area.
func (r Rect) Surface() float64 { return r.Width * r.Height }

// Center returns the rectangle's midpoint.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Inset returns the rectangle shrunk by the given margin on all sides.
// The result may have negative dimensions; callers check against minimums.
func (r Rect) Inset(margin float64) Rect {
	return Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  r.Width - 2*margin,
		Height: r.Height - 2*margin,
	}
}

// DegenerateAt returns a zero-size rectangle at the given point.
func DegenerateAt(x, y float64) Rect {
	return Rect{X: x, Y: y}
}

// Contains reports whether other lies entirely inside r, allowing a
// tolerance of eps on every side.
func (r Rect) Contains(other Rect, eps float64) bool {
	return other.X >= r.X-eps &&
		other.Y >= r.Y-eps &&
		other.X+other.Width <= r.X+r.Width+eps &&
		other.Y+other.Height <= r.Y+r.Height+eps
}

// Overlaps reports whether r and other share interior area beyond the
// tolerance eps.
func (r Rect) Overlaps(other Rect, eps float64) bool {
	return r.X+eps < other.X+other.Width &&
		other.X+eps < r.X+r.Width &&
		r.Y+eps < other.Y+other.Height &&
		other.Y+eps < r.Y+r.Height
}
