package geom

import "math"

// Coord is a 2D angular coordinate in arcseconds, using (y, x) ordering to
// match the astronomy convention for sky coordinates.
type Coord struct {
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// Add returns the component-wise sum of two coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{Y: c.Y + o.Y, X: c.X + o.X}
}

// Sub returns the component-wise difference c - o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{Y: c.Y - o.Y, X: c.X - o.X}
}

// Scale returns the coordinate multiplied by a scalar.
func (c Coord) Scale(f float64) Coord {
	return Coord{Y: c.Y * f, X: c.X * f}
}

// Radius returns the distance of the coordinate from the origin.
func (c Coord) Radius() float64 {
	return math.Hypot(c.Y, c.X)
}

// IsFinite reports whether both components are finite (no NaN or Inf).
// Mass models can produce non-finite deflections at profile centres, so
// callers must check this before using ray-traced coordinates.
func (c Coord) IsFinite() bool {
	return !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0) &&
		!math.IsNaN(c.X) && !math.IsInf(c.X, 0)
}

// Distance returns the Euclidean distance between two coordinates.
func Distance(a, b Coord) float64 {
	return math.Hypot(a.Y-b.Y, a.X-b.X)
}

// DistanceSq returns the squared Euclidean distance between two coordinates.
// Use this for comparisons to avoid the square root.
func DistanceSq(a, b Coord) float64 {
	dy := a.Y - b.Y
	dx := a.X - b.X
	return dy*dy + dx*dx
}

// Bounds is an axis-aligned bounding box in the (y, x) plane.
type Bounds struct {
	MinY, MaxY float64
	MinX, MaxX float64
}

// BoundsOf computes the bounding box of a set of coordinates. The second
// return value is false if the set is empty or contains a non-finite
// coordinate, in which case the bounds are unusable.
func BoundsOf(coords []Coord) (Bounds, bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinX: math.Inf(1), MaxX: math.Inf(-1),
	}
	for _, c := range coords {
		if !c.IsFinite() {
			return Bounds{}, false
		}
		b.MinY = math.Min(b.MinY, c.Y)
		b.MaxY = math.Max(b.MaxY, c.Y)
		b.MinX = math.Min(b.MinX, c.X)
		b.MaxX = math.Max(b.MaxX, c.X)
	}
	return b, true
}

// Contains reports whether the coordinate lies inside the box, boundary
// inclusive. Inclusive boundaries matter for the position solver: a target
// sitting exactly on a traced cell edge must register in both cells.
func (b Bounds) Contains(c Coord) bool {
	return c.Y >= b.MinY && c.Y <= b.MaxY && c.X >= b.MinX && c.X <= b.MaxX
}

// Pad returns the bounds grown by m on every side.
func (b Bounds) Pad(m float64) Bounds {
	return Bounds{
		MinY: b.MinY - m, MaxY: b.MaxY + m,
		MinX: b.MinX - m, MaxX: b.MaxX + m,
	}
}
