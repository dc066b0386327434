package octree

import (
	"errors"

	"github.com/cutsim/cutsim/vec3"
)

// Tree is an adaptive octree over a fixed world-space region, holding the
// union/intersection/difference of every volume applied to it so far.
type Tree struct {
	root     *Cell
	maxDepth int
	nextID   uint32
	gen      uint32

	cells map[uint32]*Cell // id -> cell, for CellByID lookups from meshbuf vertex ownership callbacks.

	// vertexReleaser, when set, is told which vertex ids a cell no longer
	// owns because it stopped being a leaf (split) or was freed (pruning),
	// so the mesh side can drop them instead of leaving them orphaned in
	// the buffer (the "release before freeing" pruning-safety rule of
	// spec §4.2/§4.3). Wired by isosurface.Extractor.Update.
	vertexReleaser func(ids []uint32)
}

// SetVertexReleaser registers the callback invoked with a cell's owned mesh
// vertex ids whenever the tree is about to stop tracking that ownership
// (the cell stopped being a leaf, or was freed by pruning). Safe to call
// repeatedly with the same function.
func (t *Tree) SetVertexReleaser(fn func(ids []uint32)) {
	t.vertexReleaser = fn
}

// releaseVertices hands c's owned vertex ids to the registered releaser (if
// any), then clears c's own bookkeeping since c no longer owns them. c.id
// must still resolve via CellByID for the duration of this call: removing
// one of c's own ids can swap-relocate another of c's own remaining ids
// (when both happen to live in the same buffer), and the releaser's
// relocation callback patches c.vertexIDs in place by looking c back up —
// it would silently miss the update if c.vertexIDs were already cleared or
// c already removed from the id map.
func (t *Tree) releaseVertices(c *Cell) {
	if len(c.vertexIDs) == 0 {
		return
	}
	if t.vertexReleaser != nil {
		t.vertexReleaser(c.vertexIDs)
	}
	c.vertexIDs = nil
}

// NewTree creates a tree covering a cube of the given half-scale centered
// at center. The root and every interior cell of the initial uniform
// subdivision to initialDepth are Undecided; every cell carries
// all-corners-outside (-1) samples, so the leaves of that subdivision
// classify as Outside. No real geometry is present until a volume is
// folded in with Apply or ApplyCutter.
func NewTree(center vec3.Vec, halfScale float32, maxDepth, initialDepth int) (*Tree, error) {
	if halfScale <= 0 {
		return nil, errors.New("octree: non-positive half scale")
	}
	if maxDepth < initialDepth || initialDepth < 0 {
		return nil, errors.New("octree: invalid depth configuration")
	}
	t := &Tree{maxDepth: maxDepth, cells: make(map[uint32]*Cell)}
	t.root = t.newCell(nil, -1, center, halfScale, 0)
	t.root.state = Undecided
	t.root.prev = Outside
	for i := range t.root.f {
		t.root.f[i] = -1
	}
	t.subdivideUniform(t.root, initialDepth)
	return t, nil
}

func (t *Tree) newCell(parent *Cell, slot int, center vec3.Vec, halfScale float32, depth int) *Cell {
	t.nextID++
	c := &Cell{
		center: center, halfScale: halfScale, depth: depth,
		parent: parent, slot: slot,
		id: t.nextID, gen: t.gen,
	}
	t.cells[c.id] = c
	return c
}

// Root returns the tree's root cell.
func (t *Tree) Root() *Cell { return t.root }

// MaxDepth is the finest subdivision level the tree permits.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// CellByID resolves a cell previously handed out via Cell.ID, reporting
// false if no such id was ever allocated by this tree (gen still must be
// checked by the caller against the live cell's own gen: a stale CellRef
// from a reused id, should ids ever be recycled, must not be honoured).
func (t *Tree) CellByID(id uint32) (*Cell, bool) {
	c, ok := t.cells[id]
	return c, ok
}

// subdivideUniform force-splits c down to levels further levels, as the
// tree's construction-time base grid (not driven by any particular volume).
func (t *Tree) subdivideUniform(c *Cell, levels int) {
	if levels <= 0 {
		return
	}
	t.split(c)
	for _, child := range c.children {
		t.subdivideUniform(child, levels-1)
	}
}

// split turns a leaf into an interior node with 8 children. Each child's
// corner field is seeded uniformly from c.prev (the parent's state just
// before whatever edit is forcing this split): all +1 if c.prev was
// Inside, all -1 otherwise. The per-cell CSG recompute that follows (for
// force-subdivide during Apply) or a later explicit resample then refines
// the child's own corners against the volume actually being applied.
func (t *Tree) split(c *Cell) {
	if c.childCount != 0 || c.depth >= t.maxDepth {
		return
	}
	// c stops being a leaf here; any vertices a prior extraction attributed
	// to it are stale and must be dropped rather than left orphaned.
	t.releaseVertices(c)
	fill := float32(-1)
	if c.prev == Inside {
		fill = 1
	}
	childHalf := c.halfScale / 2
	for i, s := range cornerSigns {
		childCenter := vec3.Add(c.center, vec3.Scale(childHalf, s))
		child := t.newCell(c, i, childCenter, childHalf, c.depth+1)
		for j := range child.f {
			child.f[j] = fill
		}
		child.color = c.color
		child.state = child.classify()
		child.prev = child.state
		c.children[i] = child
	}
	c.childCount = 8
	// An interior node is Undecided; its children carry the classification.
	c.state = Undecided
}

// deleteChildren collapses an interior node back into a leaf, provided its
// children are themselves all leaves in full agreement (precondition
// enforced here, not just assumed by the caller).
func (t *Tree) deleteChildren(c *Cell) bool {
	if c.childCount == 0 {
		return false
	}
	uniform := c.children[0].state
	if uniform == Undecided {
		return false
	}
	for _, ch := range c.children {
		if ch.childCount != 0 || ch.state != uniform {
			return false
		}
	}
	for i := range c.children {
		ch := c.children[i]
		t.releaseVertices(ch)
		delete(t.cells, ch.id)
		c.children[i] = nil
	}
	c.childCount = 0
	c.prev = c.state
	c.state = uniform
	return true
}

// tryCollapse applies the post-recursion pruning rule: if every child of c
// is a leaf sharing Outside (any operator), or sharing Inside (union
// only), c adopts that state and its children are released.
func (t *Tree) tryCollapse(c *Cell, op Op) {
	if c.childCount != 8 {
		return
	}
	uniform := c.children[0].state
	if uniform == Undecided {
		return
	}
	if uniform == Inside && op != OpUnion {
		return
	}
	for _, ch := range c.children {
		if ch.childCount != 0 || ch.state != uniform {
			return
		}
	}
	t.deleteChildren(c)
}

// prune walks the subtree bottom-up, collapsing every node whose children
// all agree regardless of which operator produced that agreement, and
// returns the net reduction in leaf count (seven per collapse, as eight
// leaves become one). Used for an explicit maintenance
// pass; CSG edits already self-prune via tryCollapse.
func (t *Tree) prune(c *Cell) int {
	if c.childCount == 0 {
		return 0
	}
	removed := 0
	for _, ch := range c.children {
		removed += t.prune(ch)
	}
	if t.deleteChildren(c) {
		removed += 7 // 8 children collapsed into the one remaining node.
	}
	return removed
}

// Prune collapses uniform subtrees across the whole tree.
func (t *Tree) Prune() int { return t.prune(t.root) }
