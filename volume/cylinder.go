package volume

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/cutsim/cutsim/vec3"
)

// cylinder is a finite cylinder whose axis runs along local Z in its own
// frame, rotated into world space by the same rotCenter/(alpha,gamma)
// convention as rect.
type cylinder struct {
	center       vec3.Vec
	rotCenter    vec3.Vec
	radius       float32
	height       float32
	alpha, gamma float32
	tag          Tag
}

// NewCylinder creates a finite rotated cylinder of the given radius and height.
func NewCylinder(center, rotCenter vec3.Vec, radius, height, alpha, gamma float32, tag Tag) (Volume, error) {
	if radius <= 0 || height <= 0 {
		return nil, errors.New("volume: zero or negative cylinder dimension")
	}
	return &cylinder{center: center, rotCenter: rotCenter, radius: radius, height: height, alpha: alpha, gamma: gamma, tag: tag}, nil
}

func (c *cylinder) toLocal(p vec3.Vec) vec3.Vec {
	q := vec3.Sub(p, c.rotCenter)
	q = vec3.InverseRotateXZ(q, c.alpha, c.gamma)
	q = vec3.Add(q, c.rotCenter)
	return vec3.Sub(q, c.center)
}

func (c *cylinder) Dist(p vec3.Vec) float32 {
	local := c.toLocal(p)
	halfH := c.height / 2
	lateral := math32.Hypot(local.X, local.Y)
	// Same vectorized slab formula as the teacher's rounded-cylinder body
	// (vec2 d = abs(vec2(len(xz), y)) - vec2(r,h)), negated to cutsim's
	// positive-inside convention.
	dx := lateral - c.radius
	dy := math32.Abs(local.Z) - halfH
	outside := math32.Hypot(max32(dx, 0), max32(dy, 0))
	inside := min32(max32(dx, dy), 0)
	return -(outside + inside)
}

func (c *cylinder) Bounds() vec3.Box {
	const tolerance = 1e-4
	bb := vec3.NewEmptyBox()
	for dz := float32(-1); dz <= 1; dz += 2 {
		for dx := float32(-1); dx <= 1; dx += 2 {
			for dy := float32(-1); dy <= 1; dy += 2 {
				local := vec3.Vec{X: dx * c.radius, Y: dy * c.radius, Z: dz * c.height / 2}
				world := c.toWorld(local)
				bb = bb.IncludePoint(world)
			}
		}
	}
	margin := vec3.Scale(tolerance, vec3.Vec{X: 1, Y: 1, Z: 1})
	return vec3.NewBox(vec3.Sub(bb.Min, margin), vec3.Add(bb.Max, margin))
}

func (c *cylinder) toWorld(local vec3.Vec) vec3.Vec {
	q := vec3.Add(local, c.center)
	q = vec3.Sub(q, c.rotCenter)
	q = vec3.RotateXZ(q, c.alpha, c.gamma)
	return vec3.Add(q, c.rotCenter)
}

func (c *cylinder) Color() Tag { return c.tag }

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
