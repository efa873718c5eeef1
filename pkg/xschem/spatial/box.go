// Package spatial provides an approximate location index over bounding
// boxes: a fixed-size uniform grid with toroidal wraparound. Cell
// coordinates are floor(coord/BoxSize) mod NBoxes, so memory stays bounded
// for arbitrarily large drawings at the cost of distant objects aliasing
// into the same cell. Queries may return false positives but never false
// negatives; callers must run an exact geometric test on every candidate.
package spatial

// Box is an axis-aligned bounding box. X1,Y1 is the minimum corner and
// X2,Y2 the maximum corner once normalized.
type Box struct {
	X1, Y1 float64
	X2, Y2 float64
}

// NewBox returns an empty box that any ExpandPoint call will reset.
func NewBox() Box {
	return Box{X1: 1e30, Y1: 1e30, X2: -1e30, Y2: -1e30}
}

// Empty reports whether the box has never been expanded.
func (b Box) Empty() bool {
	return b.X1 > b.X2 || b.Y1 > b.Y2
}

// ExpandPoint grows the box to include a point.
func (b *Box) ExpandPoint(x, y float64) {
	if x < b.X1 {
		b.X1 = x
	}
	if y < b.Y1 {
		b.Y1 = y
	}
	if x > b.X2 {
		b.X2 = x
	}
	if y > b.Y2 {
		b.Y2 = y
	}
}

// ExpandBox grows the box to include another box.
func (b *Box) ExpandBox(o Box) {
	if o.Empty() {
		return
	}
	b.ExpandPoint(o.X1, o.Y1)
	b.ExpandPoint(o.X2, o.Y2)
}

// Overlaps reports whether two boxes intersect, boundaries included.
func (b Box) Overlaps(o Box) bool {
	return b.X1 <= o.X2 && b.X2 >= o.X1 && b.Y1 <= o.Y2 && b.Y2 >= o.Y1
}

// ContainsPoint reports whether a point lies inside the box, boundaries
// included.
func (b Box) ContainsPoint(x, y float64) bool {
	return x >= b.X1 && x <= b.X2 && y >= b.Y1 && y <= b.Y2
}

// Width returns the horizontal extent.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Pad returns the box grown by eps on every side.
func (b Box) Pad(eps float64) Box {
	return Box{X1: b.X1 - eps, Y1: b.Y1 - eps, X2: b.X2 + eps, Y2: b.Y2 + eps}
}
