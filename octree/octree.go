// Package octree implements the adaptive signed-distance octree that backs
// the stock/parts volume: an owned-children pointer tree (unlike the
// teacher's flat, re-evaluated-per-frame DFS cube stream in glrender/octree.go)
// because the simulator needs persistent per-cell state across many
// incremental CSG edits, not a single disposable iso-surface pass.
//
// The traversal/pruning idiom is still grounded on the teacher: 8-way
// corner sampling per cube, octree() producing the eight child sub-cubes
// of a cube (glrender/octree.go's icube.octree), and a pruning pass that
// collapses a subtree once every leaf agrees on inside/outside (the
// teacher's octreePrune, adapted here to a persistent delete-children
// operation instead of a one-shot BFS buffer).
package octree

import (
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

// State is a cell's tri-state classification relative to the solid's surface.
type State uint8

const (
	Undecided State = iota
	Inside
	Outside
)

// cornerSigns is the fixed corner enumeration order shared with vec3.Box.Corners.
var cornerSigns = vec3.CornerSigns()

// Cell is one node of the octree: either a leaf carrying 8 corner distances,
// or an interior node with exactly 8 children.
type Cell struct {
	center    vec3.Vec
	halfScale float32
	depth     int

	f     [8]float32 // signed distance at each corner, in cornerSigns order.
	state State
	prev  State // state before the most recent edit, used to decide whether to re-extract.
	color volume.Tag

	children   [8]*Cell
	childCount int

	meshValid bool
	vertexIDs []uint32 // mesh back-reference: vertex indices owned by this cell's triangles.

	parent *Cell
	slot   int // this cell's index in parent.children, -1 for the root.

	id  uint32
	gen uint32
}

// Center is the cell's centroid in world space.
func (c *Cell) Center() vec3.Vec { return c.center }

// HalfScale is half the cell's edge length.
func (c *Cell) HalfScale() float32 { return c.halfScale }

// Depth is the cell's distance from the tree root.
func (c *Cell) Depth() int { return c.depth }

// State reports the cell's current inside/outside/undecided classification.
func (c *Cell) State() State { return c.state }

// Color is the material tag last painted by a dominating CSG operand.
func (c *Cell) Color() volume.Tag { return c.color }

// IsLeaf reports whether the cell currently has no children.
func (c *Cell) IsLeaf() bool { return c.childCount == 0 }

// Children returns the cell's eight child slots; every slot is nil for a leaf.
func (c *Cell) Children() [8]*Cell { return c.children }

// MeshValid reports whether the cell's owned triangles are already
// consistent with its current corner distances.
func (c *Cell) MeshValid() bool { return c.meshValid }

// SetMeshValid marks the cell as re-extracted; the isosurface package calls
// this once it has regenerated (or confirmed unneeded) this cell's triangles.
func (c *Cell) SetMeshValid(valid bool) { c.meshValid = valid }

// VertexIDs returns the mesh vertex indices this cell currently owns.
func (c *Cell) VertexIDs() []uint32 { return c.vertexIDs }

// SetVertexIDs replaces the cell's owned vertex index list.
func (c *Cell) SetVertexIDs(ids []uint32) { c.vertexIDs = ids }

// RenumberVertexID patches a single stale id in the cell's owned vertex
// list. Called back from meshbuf when a swap-remove on another cell's
// behalf relocates a vertex this cell still owns, so VertexIDs() never
// drifts out of sync with where the vertex actually lives (remove_vertex
// invariant I3).
func (c *Cell) RenumberVertexID(from, to uint32) {
	for i, id := range c.vertexIDs {
		if id == from {
			c.vertexIDs[i] = to
			return
		}
	}
}

// Bounds returns the cell's axis-aligned bounding box.
func (c *Cell) Bounds() vec3.Box {
	h := vec3.Vec{X: c.halfScale, Y: c.halfScale, Z: c.halfScale}
	return vec3.NewBox(vec3.Sub(c.center, h), vec3.Add(c.center, h))
}

// CornerField returns the cell's 8 signed corner distances in cornerSigns order.
func (c *Cell) CornerField() [8]float32 { return c.f }

// Corners returns the 8 corner world positions in cornerSigns order.
func (c *Cell) Corners() [8]vec3.Vec {
	var out [8]vec3.Vec
	for i, s := range cornerSigns {
		out[i] = vec3.Add(c.center, vec3.Scale(c.halfScale, s))
	}
	return out
}

// ID returns the cell's stable identifier and generation, used as a
// meshbuf.CellRef so mesh vertices can find their way back to the cell
// that produced them even after the tree reshapes around it.
func (c *Cell) ID() (id, gen uint32) { return c.id, c.gen }

// invalidateUp clears meshValid on this cell and every ancestor, since a
// corner-distance change anywhere below an ancestor can change which
// triangles that ancestor (if it still directly owns any, i.e. is a leaf)
// needs to emit, and always changes what its parent's pruning decision sees.
func (c *Cell) invalidateUp() {
	for n := c; n != nil; n = n.parent {
		n.meshValid = false
	}
}

// recomputeCorners resamples the cell's 8 corner distances against v and
// folds them into the running field via combine (the CSG operator), keeping
// whichever side dominates: max for union, min(-b) for subtract expressed
// as an intersection with the complement, min for intersect. If paint is
// set and any corner changed, the cell is repainted with color. Returns
// the number of corners whose value actually changed.
func (c *Cell) recomputeCorners(v volume.Volume, combine func(existing, incoming float32) float32, color volume.Tag, paint bool) (changedCorners int) {
	for i, p := range c.Corners() {
		incoming := v.Dist(p)
		merged := combine(c.f[i], incoming)
		if merged != c.f[i] {
			changedCorners++
		}
		c.f[i] = merged
	}
	if paint && changedCorners > 0 {
		c.color = color
	}
	return changedCorners
}

// classify derives Inside/Outside/Undecided from the 8 corner signs, per
// invariant 1: Inside iff every corner is >= 0, Outside iff every corner is
// strictly < 0, Undecided otherwise (a corner sitting exactly on the
// boundary counts toward Inside, never forces Undecided on its own).
func (c *Cell) classify() State {
	allPos, allNeg := true, true
	for _, f := range c.f {
		if f < 0 {
			allPos = false
		} else {
			allNeg = false
		}
	}
	switch {
	case allPos:
		return Inside
	case allNeg:
		return Outside
	default:
		return Undecided
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
