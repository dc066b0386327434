package vec3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Box is an axis-aligned bounding box. The zero value is the empty box
// (Empty reports true); the first call to IncludePoint or IncludeBox
// replaces the empty state with a real extent. The "grows from nothing"
// bookkeeping (the set flag) is cutsim's own — ms3.Box has no notion of
// an empty box — but Union/Center/Size/NewCenteredBox below delegate to
// ms3.Box once a real extent exists.
type Box struct {
	Min, Max Vec
	set      bool // false for the zero value Box (empty); true once a point or box has been included.
}

func toMS3Box(b Box) ms3.Box   { return ms3.Box{Min: toMS3(b.Min), Max: toMS3(b.Max)} }
func fromMS3Box(b ms3.Box) Box { return Box{Min: fromMS3(b.Min), Max: fromMS3(b.Max), set: true} }

// NewEmptyBox returns an explicitly empty box, ready for growth via IncludePoint/IncludeBox.
func NewEmptyBox() Box {
	return Box{}
}

// NewBox returns a Box from the given min/max corners. Panics if min > max componentwise.
func NewBox(min, max Vec) Box {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		panic("vec3: box min greater than max")
	}
	return Box{Min: min, Max: max, set: true}
}

// NewCenteredBox returns a box of the given size centered at center.
func NewCenteredBox(center, size Vec) Box {
	return fromMS3Box(ms3.NewCenteredBox(toMS3(center), toMS3(size)))
}

// Empty reports whether the box has not yet had any point added to it.
func (b Box) Empty() bool { return !b.set }

// IncludePoint grows b to include p, returning the new box.
func (b Box) IncludePoint(p Vec) Box {
	if b.Empty() {
		return Box{Min: p, Max: p, set: true}
	}
	return b.Union(Box{Min: p, Max: p, set: true})
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return fromMS3Box(toMS3Box(b).Union(toMS3Box(o)))
}

// IncludeBox grows b to include o.
func (b Box) IncludeBox(o Box) Box {
	return b.Union(o)
}

// Size returns the per-axis extent of the box.
func (b Box) Size() Vec {
	return fromMS3(toMS3Box(b).Size())
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec {
	return fromMS3(toMS3Box(b).Center())
}

// Contains reports whether p lies within the box (inclusive). Not a
// concern ms3.Box exposes directly (it models CSG bounds, not membership
// queries), so this stays a direct field comparison.
func (b Box) Contains(p Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps reports whether b and o share any volume.
func (b Box) Overlaps(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// ScaleCentered scales the box about its own center by the given per-axis factors.
func (b Box) ScaleCentered(factor Vec) Box {
	c := b.Center()
	half := Scale(0.5, b.Size())
	half = Vec{X: half.X * factor.X, Y: half.Y * factor.Y, Z: half.Z * factor.Z}
	return Box{Min: Sub(c, half), Max: Add(c, half), set: true}
}

// Diagonal returns the length of the box's space diagonal.
func (b Box) Diagonal() float32 {
	return Norm(b.Size())
}

// Corners returns the eight corners of the box in CORNER-ORDER (see glossary):
// (+,+,-) (-,+,-) (-,-,-) (+,-,-) (+,+,+) (-,+,+) (-,-,+) (+,-,+)
// where each sign triple is the direction from the box center along (x,y,z).
func (b Box) Corners() [8]Vec {
	c := b.Center()
	h := Scale(0.5, b.Size())
	signs := CornerSigns()
	var out [8]Vec
	for i, s := range signs {
		out[i] = Vec{
			X: c.X + s.X*h.X,
			Y: c.Y + s.Y*h.Y,
			Z: c.Z + s.Z*h.Z,
		}
	}
	return out
}

// CornerSigns returns the eight +-1 sign triples of CORNER-ORDER.
func CornerSigns() [8]Vec {
	return [8]Vec{
		{X: 1, Y: 1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: -1},
		{X: 1, Y: -1, Z: -1},
		{X: 1, Y: 1, Z: 1},
		{X: -1, Y: 1, Z: 1},
		{X: -1, Y: -1, Z: 1},
		{X: 1, Y: -1, Z: 1},
	}
}

// IsNaN reports whether any component of v is NaN.
func IsNaN(v Vec) bool {
	return math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsNaN(v.Z)
}
