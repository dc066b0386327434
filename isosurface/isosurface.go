// Package isosurface extracts a triangle mesh from the octree's signed
// distance field. Each leaf cell is split into six tetrahedra sharing its
// main diagonal, and each tetrahedron's zero-crossing is triangulated
// directly from its inside/outside corner count (0, 1, 2, 3 or 4 corners
// inside has an immediate, unambiguous triangulation), the same
// intersect-the-crossed-edges idea as the teacher's marching cubes pass in
// glrender/octree.go's marchCubes, generalized from axis-aligned cubes to
// tetrahedra so there is no 256-case table to hand-maintain and no
// Marching Cubes topological ambiguity to resolve.
//
// Re-extraction is incremental: Update only revisits cells whose
// MeshValid() is false, matching the octree's own mesh_valid invalidation
// bookkeeping, and leaves every already-valid subtree's vertices untouched.
package isosurface

import (
	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

// tetraCorners lists, for each of the 6 tetrahedra sharing the cube's
// 0-6 main diagonal, the 4 cube-corner indices (in this project's own
// corner order, i.e. vec3.CornerSigns()/octree.Cell.Corners()) forming it.
var tetraCorners = [6][4]int{
	{0, 5, 1, 6},
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
}

// tri is one extracted triangle with a precomputed face normal.
type tri struct {
	a, b, c vec3.Vec
	normal  vec3.Vec
}

// extractCell triangulates a single leaf cell's six tetrahedra.
func extractCell(c *octree.Cell) []tri {
	corners := c.Corners()
	f := c.CornerField()
	var out []tri
	for _, tc := range tetraCorners {
		var p [4]vec3.Vec
		var v [4]float32
		for i, ci := range tc {
			p[i] = corners[ci]
			v[i] = f[ci]
		}
		for _, t := range triangulateTetra(p, v) {
			n := vec3.Normalize(vec3.Cross(vec3.Sub(t[1], t[0]), vec3.Sub(t[2], t[0])))
			out = append(out, tri{a: t[0], b: t[1], c: t[2], normal: n})
		}
	}
	return out
}

// triangulateTetra returns the zero-crossing triangles of a tetrahedron
// given its 4 corner positions and signed field values (positive inside),
// oriented so each triangle's geometric normal points from inside toward
// outside.
func triangulateTetra(p [4]vec3.Vec, f [4]float32) [][3]vec3.Vec {
	var insideIdx, outsideIdx []int
	for i, v := range f {
		if v >= 0 {
			insideIdx = append(insideIdx, i)
		} else {
			outsideIdx = append(outsideIdx, i)
		}
	}
	edge := func(i, j int) vec3.Vec {
		t := f[i] / (f[i] - f[j])
		return vec3.Add(p[i], vec3.Scale(t, vec3.Sub(p[j], p[i])))
	}

	var tris [][3]vec3.Vec
	switch len(insideIdx) {
	case 0, 4:
		return nil
	case 1, 3:
		var single int
		if len(insideIdx) == 1 {
			single = insideIdx[0]
		} else {
			single = outsideIdx[0]
		}
		others := otherThree(single)
		tris = [][3]vec3.Vec{{
			edge(single, others[0]),
			edge(single, others[1]),
			edge(single, others[2]),
		}}
	case 2:
		i, j := insideIdx[0], insideIdx[1]
		k, l := outsideIdx[0], outsideIdx[1]
		pik, pil := edge(i, k), edge(i, l)
		pjk, pjl := edge(j, k), edge(j, l)
		tris = [][3]vec3.Vec{
			{pik, pil, pjl},
			{pik, pjl, pjk},
		}
	}

	outward := outwardDirection(p, insideIdx, outsideIdx)
	for idx, t := range tris {
		n := vec3.Cross(vec3.Sub(t[1], t[0]), vec3.Sub(t[2], t[0]))
		if vec3.Dot(n, outward) < 0 {
			tris[idx][1], tris[idx][2] = tris[idx][2], tris[idx][1]
		}
	}
	return tris
}

// otherThree returns {0,1,2,3}\{single} in increasing order.
func otherThree(single int) [3]int {
	var out [3]int
	n := 0
	for i := 0; i < 4; i++ {
		if i != single {
			out[n] = i
			n++
		}
	}
	return out
}

func outwardDirection(p [4]vec3.Vec, insideIdx, outsideIdx []int) vec3.Vec {
	var insideAvg, outsideAvg vec3.Vec
	for _, i := range insideIdx {
		insideAvg = vec3.Add(insideAvg, p[i])
	}
	if len(insideIdx) > 0 {
		insideAvg = vec3.Scale(1/float32(len(insideIdx)), insideAvg)
	}
	for _, i := range outsideIdx {
		outsideAvg = vec3.Add(outsideAvg, p[i])
	}
	if len(outsideIdx) > 0 {
		outsideAvg = vec3.Scale(1/float32(len(outsideIdx)), outsideAvg)
	}
	return vec3.Sub(outsideAvg, insideAvg)
}

// Extractor re-triangulates an octree's invalidated cells into a mesh buffer.
type Extractor struct {
	buf *meshbuf.Buffer
}

// New creates an Extractor writing into buf's work side.
func New(buf *meshbuf.Buffer) *Extractor {
	return &Extractor{buf: buf}
}

// Update walks the tree, clearing and regenerating the owned vertices of
// every cell whose mesh is not valid, then marks it valid. Cells whose
// subtree is already valid are skipped entirely without descending further
// (the short-circuit that makes re-extraction incremental).
//
// It also (re-)registers itself as t's vertex releaser, so any cell the
// tree stops tracking ownership for — because it was force-split out of
// leafhood, or freed outright by pruning — has its stale vertices dropped
// from the work buffer instead of left dangling (invariant I3/I4), and
// wires the buffer's swap-remove relocation callback back to the owning
// cell's own vertex-id bookkeeping so it never drifts stale either.
func (e *Extractor) Update(t *octree.Tree) {
	t.SetVertexReleaser(e.releaseVertices)
	e.buf.Work().SetOnVertexMoved(func(owner meshbuf.CellRef, from, to uint32) {
		cell, ok := t.CellByID(owner.CellID)
		if !ok {
			return
		}
		if _, gen := cell.ID(); gen != owner.Gen {
			return // stale handle from a reused id; nothing live to patch.
		}
		cell.RenumberVertexID(from, to)
	})
	e.visit(t.Root())
}

// releaseVertices removes ids (and every triangle referencing them) from
// the work side of the mesh buffer on behalf of a cell the tree no longer
// attributes them to.
func (e *Extractor) releaseVertices(ids []uint32) {
	work := e.buf.Work()
	for _, id := range ids {
		work.RemoveVertexCascade(id)
	}
}

func (e *Extractor) visit(c *octree.Cell) {
	if c.MeshValid() {
		return
	}
	if !c.IsLeaf() {
		for _, ch := range c.Children() {
			if ch != nil {
				e.visit(ch)
			}
		}
		c.SetMeshValid(true)
		return
	}
	e.regenerate(c)
	c.SetMeshValid(true)
}

// regenerate clears c's previously owned vertices/triangles and re-emits
// them from scratch against c's current corner field.
func (e *Extractor) regenerate(c *octree.Cell) {
	work := e.buf.Work()
	for _, vid := range c.VertexIDs() {
		work.RemoveVertexCascade(vid)
	}
	if c.State() != octree.Undecided {
		c.SetVertexIDs(nil)
		return
	}
	id, gen := c.ID()
	owner := meshbuf.CellRef{CellID: id, Gen: gen}
	collided := c.Color() == volume.TagCollision
	tris := extractCell(c)
	ids := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		a := work.AddVertex(meshbuf.Vertex{Position: t.a, Normal: t.normal, Collided: collided, Owner: owner})
		b := work.AddVertex(meshbuf.Vertex{Position: t.b, Normal: t.normal, Collided: collided, Owner: owner})
		c2 := work.AddVertex(meshbuf.Vertex{Position: t.c, Normal: t.normal, Collided: collided, Owner: owner})
		work.AddPolygon(a, b, c2)
		ids = append(ids, a, b, c2)
	}
	c.SetVertexIDs(ids)
}
