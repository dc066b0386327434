package volume

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/cutsim/cutsim/vec3"
)

// CollisionTolerance is the minimum penetration depth into a guarded region
// before Classify reports a hit (spec §4.1: "A hit is reported only if the
// penetration exceeds a small collision tolerance").
const CollisionTolerance = 1e-4

// cutterGeometry holds the concentric-annulus geometry shared by cylindrical
// and ball end mills: tip at local z=0, axis along local +Z, positioned and
// oriented in world space by tip/axis.
type cutterGeometry struct {
	tip  vec3.Vec // tool tip position in world space.
	axis vec3.Vec // unit vector, tool axis pointing away from the workpiece (toward the spindle).

	fluteRadius  float32
	fluteLength  float32
	neckRadius   float32
	reachLength  float32
	shankRadius  float32
	length       float32 // shank end, i.e. total length to the holder interface.
	holderRadius float32
	holderLength float32
}

func newCutterGeometry(tip, axis vec3.Vec, fluteRadius, fluteLength, neckRadius, reachLength, shankRadius, length, holderRadius, holderLength float32) (cutterGeometry, error) {
	if fluteRadius <= 0 || fluteLength <= 0 {
		return cutterGeometry{}, errors.New("volume: cutter requires positive flute radius and length")
	}
	if reachLength < fluteLength {
		return cutterGeometry{}, errors.New("volume: cutter reach length must be >= flute length")
	}
	if length < reachLength {
		return cutterGeometry{}, errors.New("volume: cutter total length must be >= reach length")
	}
	return cutterGeometry{
		tip: tip, axis: vec3.Normalize(axis),
		fluteRadius: fluteRadius, fluteLength: fluteLength,
		neckRadius: neckRadius, reachLength: reachLength,
		shankRadius: shankRadius, length: length,
		holderRadius: holderRadius, holderLength: holderLength,
	}, nil
}

// localZR resolves p into axial offset z (along axis, tip at 0) and
// lateral radius r from the axis.
func (g *cutterGeometry) localZR(p vec3.Vec) (z, r float32) {
	d := vec3.Sub(p, g.tip)
	z = vec3.Dot(d, g.axis)
	lateral := vec3.Sub(d, vec3.Scale(z, g.axis))
	r = vec3.Norm(lateral)
	return z, r
}

// band returns the nominal annulus radius that owns axial position z,
// the axial band's [lo,hi) extent, and which guarded region (if any) that
// band represents, per spec §4.1's four concentric annuli. Below the tip
// the flute band is returned and above the holder the holder band, so dist
// measures those points against the flat tip disc and the holder's top face.
func (g *cutterGeometry) band(z float32) (radius, lo, hi float32, region RegionBits) {
	switch {
	case z < 0:
		return g.fluteRadius, 0, g.fluteLength, RegionNone // flat disc below the tip.
	case z < g.fluteLength:
		return g.fluteRadius, 0, g.fluteLength, RegionNone
	case z < g.reachLength:
		return g.neckRadius, g.fluteLength, g.reachLength, RegionNeck
	case z < g.length:
		return g.shankRadius, g.reachLength, g.length, RegionShank
	case z < g.length+g.holderLength:
		return g.holderRadius, g.length, g.length + g.holderLength, RegionHolder
	default:
		return g.holderRadius, g.length, g.length + g.holderLength, RegionHolder
	}
}

// dist returns the signed distance (positive inside) to the swept cutter solid.
func (g *cutterGeometry) dist(p vec3.Vec) float32 {
	z, r := g.localZR(p)
	radius, lo, hi, _ := g.band(z)
	dr := radius - r
	var dz float32
	switch {
	case z < lo:
		dz = z - lo
	case z >= hi:
		dz = hi - z
	default:
		dz = min32(z-lo, hi-z)
	}
	if dr >= 0 && dz >= 0 {
		return min32(dr, dz)
	}
	ddr := max32(-dr, 0)
	ddz := max32(-dz, 0)
	return -math32.Hypot(ddr, ddz)
}

// classify returns the signed distance together with the guarded region hit,
// if the penetration into that region exceeds CollisionTolerance on both
// the radial and axial axes.
func (g *cutterGeometry) classify(p vec3.Vec) (float32, RegionBits) {
	z, r := g.localZR(p)
	radius, lo, hi, region := g.band(z)
	d := g.dist(p)
	if region == RegionNone {
		return d, RegionNone
	}
	dr := radius - r
	var dz float32
	switch {
	case z < lo:
		dz = z - lo
	case z >= hi:
		dz = hi - z
	default:
		dz = min32(z-lo, hi-z)
	}
	if dr > CollisionTolerance && dz > CollisionTolerance {
		return d, region
	}
	return d, RegionNone
}

func (g *cutterGeometry) bounds() vec3.Box {
	maxRadius := g.fluteRadius
	for _, r := range []float32{g.neckRadius, g.shankRadius, g.holderRadius} {
		if r > maxRadius {
			maxRadius = r
		}
	}
	totalLength := g.length + g.holderLength
	tipEnd := g.tip
	topEnd := vec3.Add(g.tip, vec3.Scale(totalLength, g.axis))
	bb := vec3.NewEmptyBox()
	for _, center := range []vec3.Vec{tipEnd, topEnd} {
		bb = bb.IncludeBox(vec3.NewBox(
			vec3.Sub(center, vec3.Vec{X: maxRadius, Y: maxRadius, Z: maxRadius}),
			vec3.Add(center, vec3.Vec{X: maxRadius, Y: maxRadius, Z: maxRadius}),
		))
	}
	return bb
}

// cylinderCutter is a flat-ended end mill: flute, neck, reach, shank, holder.
type cylinderCutter struct {
	cutterGeometry
	tag Tag
}

// NewCylinderCutter builds a cylindrical end mill cutter volume.
func NewCylinderCutter(tip, axis vec3.Vec, fluteRadius, fluteLength, neckRadius, reachLength, shankRadius, length, holderRadius, holderLength float32, tag Tag) (Cutter, error) {
	g, err := newCutterGeometry(tip, axis, fluteRadius, fluteLength, neckRadius, reachLength, shankRadius, length, holderRadius, holderLength)
	if err != nil {
		return nil, err
	}
	return &cylinderCutter{cutterGeometry: g, tag: tag}, nil
}

func (c *cylinderCutter) Dist(p vec3.Vec) float32 { return c.cutterGeometry.dist(p) }
func (c *cylinderCutter) Bounds() vec3.Box        { return c.cutterGeometry.bounds() }
func (c *cylinderCutter) Color() Tag              { return c.tag }
func (c *cylinderCutter) Classify(p vec3.Vec) (float32, RegionBits) {
	return c.cutterGeometry.classify(p)
}
func (c *cylinderCutter) HolderBounds() vec3.Box {
	center := vec3.Add(c.tip, vec3.Scale(c.length+c.holderLength/2, c.axis))
	r := c.holderRadius
	half := vec3.Vec{X: r, Y: r, Z: c.holderLength / 2}
	return vec3.NewBox(vec3.Sub(center, half), vec3.Add(center, half))
}

// ballCutter is a ball-nose end mill: flute region is a hemisphere of radius
// below a cylinder of the same radius, then neck/shank/holder as usual.
type ballCutter struct {
	cutterGeometry
	tag Tag
}

// NewBallCutter builds a ball-nose end mill cutter volume.
func NewBallCutter(tip, axis vec3.Vec, ballRadius, fluteLength, neckRadius, reachLength, shankRadius, length, holderRadius, holderLength float32, tag Tag) (Cutter, error) {
	g, err := newCutterGeometry(tip, axis, ballRadius, fluteLength, neckRadius, reachLength, shankRadius, length, holderRadius, holderLength)
	if err != nil {
		return nil, err
	}
	return &ballCutter{cutterGeometry: g, tag: tag}, nil
}

func (b *ballCutter) Dist(p vec3.Vec) float32 {
	z, r := b.localZR(p)
	if z < b.fluteRadius {
		// Hemisphere region: ball center sits on-axis at z=fluteRadius (==ballRadius),
		// tapering smoothly to a point at z=0 with no separate flat-disc tip.
		return b.fluteRadius - math32.Hypot(r, z-b.fluteRadius)
	}
	return b.cutterGeometry.dist(p)
}

func (b *ballCutter) Bounds() vec3.Box { return b.cutterGeometry.bounds() }
func (b *ballCutter) Color() Tag       { return b.tag }
func (b *ballCutter) Classify(p vec3.Vec) (float32, RegionBits) {
	z, _ := b.localZR(p)
	if z < b.fluteRadius {
		return b.Dist(p), RegionNone
	}
	return b.cutterGeometry.classify(p)
}
func (b *ballCutter) HolderBounds() vec3.Box {
	cc := cylinderCutter{cutterGeometry: b.cutterGeometry}
	return cc.HolderBounds()
}
