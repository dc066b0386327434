package volume

import (
	"errors"

	"github.com/cutsim/cutsim/vec3"
)

// rect is a rotated rectangular box: width/length/height along the box's
// own local x/y/z axes, rotated by Tait-Bryan angles (alpha, 0, gamma)
// about rotCenter, with the (possibly distinct) box center held separately
// so the box can be spun about an external pivot.
type rect struct {
	center       vec3.Vec
	rotCenter    vec3.Vec
	half         vec3.Vec // w/2, l/2, h/2 in local frame
	alpha, gamma float32
	tag          Tag
}

// NewRect creates a rotated rectangular box volume.
// width/length/height are full extents along the box's own x/y/z axes;
// rotCenter is the pivot the (alpha,gamma) Tait-Bryan rotation is applied
// about (subtract rotCenter, apply the inverse rotation, add rotCenter back).
func NewRect(center, rotCenter vec3.Vec, width, length, height, alpha, gamma float32, tag Tag) (Volume, error) {
	if width <= 0 || length <= 0 || height <= 0 {
		return nil, errors.New("volume: zero or negative rect dimension")
	}
	return &rect{
		center:    center,
		rotCenter: rotCenter,
		half:      vec3.Scale(0.5, vec3.Vec{X: width, Y: length, Z: height}),
		alpha:     alpha,
		gamma:     gamma,
		tag:       tag,
	}, nil
}

// toLocal maps a world point into the box's unrotated local frame.
func (r *rect) toLocal(p vec3.Vec) vec3.Vec {
	q := vec3.Sub(p, r.rotCenter)
	q = vec3.InverseRotateXZ(q, r.alpha, r.gamma)
	q = vec3.Add(q, r.rotCenter)
	return vec3.Sub(q, r.center)
}

// toWorld maps a point in the box's own local frame back to world space.
func (r *rect) toWorld(local vec3.Vec) vec3.Vec {
	q := vec3.Add(local, r.center)
	q = vec3.Sub(q, r.rotCenter)
	q = vec3.RotateXZ(q, r.alpha, r.gamma)
	return vec3.Add(q, r.rotCenter)
}

func (r *rect) Dist(p vec3.Vec) float32 {
	local := r.toLocal(p)
	q := vec3.Sub(vec3.Abs(local), r.half)
	outside := vec3.Max(q, vec3.Vec{})
	outsideDist := vec3.Norm(outside)
	insideDist := max32(q.X, max32(q.Y, q.Z))
	if insideDist > 0 {
		insideDist = 0
	}
	// Standard box SDF is negative inside; cutsim wants positive inside, so negate.
	return -(outsideDist + insideDist)
}

func (r *rect) Bounds() vec3.Box {
	const tolerance = 1e-4
	signs := vec3.CornerSigns()
	bb := vec3.NewEmptyBox()
	for _, s := range signs {
		local := vec3.Vec{X: s.X * r.half.X, Y: s.Y * r.half.Y, Z: s.Z * r.half.Z}
		bb = bb.IncludePoint(r.toWorld(local))
	}
	margin := vec3.Scale(tolerance, vec3.Vec{X: 1, Y: 1, Z: 1})
	return vec3.NewBox(vec3.Sub(bb.Min, margin), vec3.Add(bb.Max, margin))
}

func (r *rect) Color() Tag { return r.tag }

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
