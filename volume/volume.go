// Package volume implements the signed-distance solid primitives applied
// to the octree during CSG operations: stock/part shapes (sphere, rotated
// rectangle, cylinder, STL mesh) and cutter shapes (cylindrical and ball
// end mills with guarded neck/shank/holder regions).
//
// Every Volume reports f=Dist(p) positive strictly inside the solid,
// negative strictly outside, zero on the boundary. |f| need not be the
// true Euclidean distance but must be monotone enough that f>=0 defines
// exactly the closed solid — the same contract the teacher's SDF
// primitives use, just with the sign convention cutsim needs for CSG
// (the teacher already returns positive-inside for its sphere/box/cylinder
// bodies, e.g. "return length(p)-r" with r subtracted so outside is
// negative once negated appropriately; cutsim's primitives below keep
// that same arithmetic shape).
package volume

import "github.com/cutsim/cutsim/vec3"

// Tag is a small explicit colour/material tag, replacing the exact
// float-equality sentinel comparisons the original C++ source used on
// reserved colour values (see spec Open Questions).
type Tag uint8

const (
	TagStock Tag = iota
	TagParts
	TagCollision
)

// Volume is a solid that can be applied to the octree via a CSG operator.
type Volume interface {
	// Dist returns the signed distance at p: positive inside, negative outside.
	Dist(p vec3.Vec) float32
	// Bounds returns an AABB enclosing the volume's interior.
	Bounds() vec3.Box
	// Color is the tag stained onto cells this volume dominates.
	Color() Tag
}

// RegionBits flags which guarded part of a cutter volume contains a point.
type RegionBits uint8

const (
	RegionNone   RegionBits = 0
	RegionFlute  RegionBits = 1 << 0
	RegionNeck   RegionBits = 1 << 1
	RegionShank  RegionBits = 1 << 2
	RegionHolder RegionBits = 1 << 3
)

func (r RegionBits) Has(bit RegionBits) bool { return r&bit != 0 }

// Cutter is a Volume that additionally classifies points against its
// guarded (non-cutting) regions: neck, shank, holder.
type Cutter interface {
	Volume
	// Classify returns the signed distance (as Dist would) together with
	// which guarded region, if any, p falls within.
	Classify(p vec3.Vec) (dist float32, region RegionBits)
	// HolderBounds returns the AABB of the tool holder region, used by the
	// octree to early-exit subtract dispatch the same way Bounds() is used
	// for the cutting region.
	HolderBounds() vec3.Box
}
