package octree

import (
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

// Op is a CSG operator applied between the tree's current field and an
// incoming volume.
type Op uint8

const (
	OpUnion Op = iota
	OpSubtract
	OpIntersect
)

func combineFor(op Op) func(existing, incoming float32) float32 {
	switch op {
	case OpUnion:
		return max32
	case OpSubtract:
		return func(existing, incoming float32) float32 { return min32(existing, -incoming) }
	case OpIntersect:
		return min32
	default:
		return max32
	}
}

// Apply folds v into the tree via op, force-subdividing any leaf whose
// corners newly straddle the surface (provided it has headroom below
// maxDepth), invalidating the mesh of every cell it touches, and
// collapsing any interior node whose children end up in full agreement.
//
// Cells whose bounds don't overlap v's bounds at all are skipped outright
// (the same early-exit the teacher's octree renderer gets for free by only
// ever decomposing cubes inside the SDF's own bounds).
func (t *Tree) Apply(v volume.Volume, op Op, color volume.Tag) {
	vb := v.Bounds()
	combine := combineFor(op)
	t.apply(t.root, v, vb, op, combine, color)
}

func (t *Tree) apply(c *Cell, v volume.Volume, vb vec3.Box, op Op, combine func(existing, incoming float32) float32, color volume.Tag) bool {
	switch op {
	case OpUnion:
		if c.state == Inside || !c.Bounds().Overlaps(vb) {
			return false
		}
	case OpIntersect:
		if c.state == Outside {
			return false
		}
	default: // OpSubtract
		if c.state == Outside || !c.Bounds().Overlaps(vb) {
			return false
		}
	}

	if c.childCount > 0 {
		for _, ch := range c.children {
			t.apply(ch, v, vb, op, combine, color)
		}
		t.tryCollapse(c, op)
		return true
	}

	changedCorners := c.recomputeCorners(v, combine, color, true)
	if changedCorners == 0 {
		return false
	}
	c.prev = c.state
	c.state = c.classify()
	if c.state != c.prev {
		c.invalidateUp()
	} else {
		c.meshValid = false
	}
	if c.state == Undecided && c.depth < t.maxDepth-1 {
		t.split(c)
		for _, ch := range c.children {
			t.apply(ch, v, vb, op, combine, color)
		}
		t.tryCollapse(c, op)
	}
	return true
}

// CutResult summarizes one cutter-sweep subtract pass: how many corners had
// material actually removed, which guarded cutter regions (if any)
// intersected remaining material, and whether the cutter (in any region,
// including the flute) touched a parts-tagged fixture — contact with a
// part is always a collision, unlike contact with ordinary stock.
type CutResult struct {
	CutCount     int
	CollisionHit volume.RegionBits
	PartsHit     bool
}

// ApplyCutter subtracts a cutter's cutting volume from the tree while also
// classifying every touched leaf's corners against the cutter's guarded
// regions (neck/shank/holder), accumulating a collision report. This is
// the collision-reporting variant of Apply used by the simulation
// orchestrator for every cutter-sweep step, instead of a plain
// Apply(cutter, OpSubtract, ...).
func (t *Tree) ApplyCutter(cutter volume.Cutter, color volume.Tag) CutResult {
	var res CutResult
	vb := cutter.Bounds()
	hb := cutter.HolderBounds()
	combined := vb.Union(hb)
	combine := combineFor(OpSubtract)
	t.applyCutter(t.root, cutter, combined, combine, color, &res)
	return res
}

func (t *Tree) applyCutter(c *Cell, cutter volume.Cutter, combined vec3.Box, combine func(existing, incoming float32) float32, color volume.Tag, res *CutResult) {
	if c.state == Outside || !c.Bounds().Overlaps(combined) {
		return
	}
	if c.childCount > 0 {
		for _, ch := range c.children {
			t.applyCutter(ch, cutter, combined, combine, color, res)
		}
		t.tryCollapse(c, OpSubtract)
		return
	}

	changedCorners := c.recomputeCorners(cutter, combine, color, true)
	res.CutCount += changedCorners
	if changedCorners > 0 {
		c.prev = c.state
		c.state = c.classify()
		if c.state != c.prev {
			c.invalidateUp()
		} else {
			c.meshValid = false
		}
	}
	if c.state == Undecided && c.depth < t.maxDepth-1 {
		t.split(c)
		for _, ch := range c.children {
			t.applyCutter(ch, cutter, combined, combine, color, res)
		}
		t.tryCollapse(c, OpSubtract)
		return
	}
	t.scanCollision(c, cutter, res)
}

// scanCollision flags any guarded cutter region (neck/shank/holder) that
// still overlaps remaining material at c's corners, and separately flags
// any cutter contact at all (including the flute) with a parts-tagged
// corner. A corner under the cutter's flute sitting on ordinary stock is
// never a collision; the same flute touching a part always is.
func (t *Tree) scanCollision(c *Cell, cutter volume.Cutter, res *CutResult) {
	for i, p := range c.Corners() {
		if c.f[i] < 0 {
			continue
		}
		dist, region := cutter.Classify(p)
		underCutter := region != volume.RegionNone || dist >= 0
		if !underCutter {
			continue
		}
		if region != volume.RegionNone {
			res.CollisionHit |= region
		}
		if c.color == volume.TagParts {
			res.PartsHit = true
		}
	}
}
