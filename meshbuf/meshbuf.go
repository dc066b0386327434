// Package meshbuf implements the double-buffered triangle mesh store handed
// from the simulation side to the render side: a "work" side the simulation
// mutates while extracting an updated iso-surface, and a "render" side a
// viewer reads from, swapped only when the work side is internally
// consistent again.
//
// The buffer layout and the swap-remove deletion strategy mirror the
// position/distance eval-buffer bookkeeping in the teacher's octree
// renderer (oc.posbuf, oc.distbuf, len/cap slicing instead of append-heavy
// growth), adapted here to own persistent vertex/index storage instead of
// a per-call streaming buffer.
package meshbuf

import "github.com/cutsim/cutsim/vec3"

// CellRef identifies the octree cell a vertex is generated by, so the
// octree side can look up (and invalidate) the vertices it owns without
// a full buffer scan.
type CellRef struct {
	CellID uint32
	Gen    uint32 // generation counter: stale refs to a reused CellID are detected by mismatch.
}

// Vertex is one mesh sample: position, normal, and the owning cell back-reference.
type Vertex struct {
	Position vec3.Vec
	Normal   vec3.Vec
	Collided bool // true if this vertex lies on a triangle flagged by a collision subtract.
	Owner    CellRef
}

// side is one half of the double buffer: a vertex array plus a flat
// triangle index array (three indices per triangle).
type side struct {
	vertices []Vertex
	indices  []uint32
	// polyOf maps a vertex index to the list of triangle (index/3) indices
	// using it, kept sorted descending so polygon removal can use swap-remove
	// without renumbering indices still pending removal ahead of it.
	polyOf map[uint32][]uint32
	// onMoved, if set, is told when swap-remove relocates a still-live
	// vertex to a new index, so its owning cell's back-reference (outside
	// this package's knowledge) can be patched instead of drifting stale.
	onMoved func(owner CellRef, from, to uint32)
}

func newSide() *side {
	return &side{polyOf: make(map[uint32][]uint32)}
}

// copyFrom replaces s's vertex/index/ownership data with a deep copy of
// src's, leaving s's own onMoved hook untouched (a per-side behavior wiring,
// not mesh data).
func (s *side) copyFrom(src *side) {
	s.vertices = append(s.vertices[:0], src.vertices...)
	s.indices = append(s.indices[:0], src.indices...)
	s.polyOf = make(map[uint32][]uint32, len(src.polyOf))
	for k, v := range src.polyOf {
		s.polyOf[k] = append([]uint32(nil), v...)
	}
}

// Buffer is the double-buffered geometry store: Work() is mutated by the
// simulation side, Render() is read by a viewer, and Swap() exchanges them.
type Buffer struct {
	sides  [2]*side
	work   int // index into sides of the current work side.
	render int // index into sides of the current render side.
}

// New creates an empty double-buffered mesh store.
func New() *Buffer {
	return &Buffer{sides: [2]*side{newSide(), newSide()}, work: 0, render: 1}
}

// Work returns the side the simulation is free to mutate.
func (b *Buffer) Work() *Side { return (*Side)(b.sides[b.work]) }

// Render returns the side a viewer is free to read; never mutated concurrently
// with Work() because Swap is the only thing that touches both sides at once.
func (b *Buffer) Render() *Side { return (*Side)(b.sides[b.render]) }

// Swap exchanges the work and render sides, then resynchronises the new
// work side to match the new render side (spec §4.3: "the new work side is
// then resynchronised to match the new render side (copy)"), so the next
// extraction pass starts from the geometry the renderer is now looking at
// rather than whatever the other side held two swaps ago. Call only once
// the work side is in a fully consistent state (no half-applied cell
// updates).
func (b *Buffer) Swap() {
	b.work, b.render = b.render, b.work
	b.sides[b.work].copyFrom(b.sides[b.render])
}

// Side is the externally visible read/write handle onto one half of the
// double buffer. It is a distinct named type from *side so Work()/Render()
// can't be assigned across each other by accident.
type Side side

// SetOnVertexMoved registers the callback invoked whenever a swap-remove
// relocates a surviving vertex to a new index. The isosurface package wires
// this to patch the owning octree cell's stored vertex id (octree.Cell.
// RenumberVertexID) so it never points at a stale slot.
func (s *Side) SetOnVertexMoved(fn func(owner CellRef, from, to uint32)) {
	s.onMoved = fn
}

// Vertices returns the side's current vertex slice. Do not retain across
// AddVertex/RemoveVertex calls: the backing array may be reallocated.
func (s *Side) Vertices() []Vertex { return s.vertices }

// Indices returns the side's flat triangle index array (three per triangle).
func (s *Side) Indices() []uint32 { return s.indices }

// AddVertex appends a vertex and returns its index.
func (s *Side) AddVertex(v Vertex) uint32 {
	idx := uint32(len(s.vertices))
	s.vertices = append(s.vertices, v)
	return idx
}

// RemoveVertex deletes the vertex at idx via swap-remove with the last
// vertex, renumbering any triangle indices and polygon ownership entries
// that referenced the swapped-in vertex.
func (s *Side) RemoveVertex(idx uint32) {
	last := uint32(len(s.vertices) - 1)
	if idx > last {
		return
	}
	if idx != last {
		s.vertices[idx] = s.vertices[last]
		s.renumberVertex(last, idx)
	}
	s.vertices = s.vertices[:last]
	delete(s.polyOf, last)
}

func (s *Side) renumberVertex(from, to uint32) {
	for i, v := range s.indices {
		if v == from {
			s.indices[i] = to
		}
	}
	if polys, ok := s.polyOf[from]; ok {
		s.polyOf[to] = polys
		delete(s.polyOf, from)
	}
	if s.onMoved != nil {
		s.onMoved(s.vertices[to].Owner, from, to)
	}
}

// AddPolygon appends a triangle (three vertex indices) and returns its
// polygon index (Indices()[3*polyIdx:3*polyIdx+3]).
func (s *Side) AddPolygon(a, b, c uint32) uint32 {
	polyIdx := uint32(len(s.indices) / 3)
	s.indices = append(s.indices, a, b, c)
	for _, v := range [3]uint32{a, b, c} {
		s.polyOf[v] = appendSortedDesc(s.polyOf[v], polyIdx)
	}
	return polyIdx
}

// RemovePolygon deletes the triangle at polyIdx via swap-remove with the
// last triangle, fixing up ownership sets for affected vertices.
func (s *Side) RemovePolygon(polyIdx uint32) {
	lastIdx := uint32(len(s.indices)/3 - 1)
	base := polyIdx * 3
	lastBase := lastIdx * 3
	if base > lastBase {
		return
	}
	for _, v := range s.indices[base : base+3] {
		s.polyOf[v] = removeFromSorted(s.polyOf[v], polyIdx)
	}
	if polyIdx != lastIdx {
		a, b, c := s.indices[lastBase], s.indices[lastBase+1], s.indices[lastBase+2]
		s.indices[base], s.indices[base+1], s.indices[base+2] = a, b, c
		for _, v := range [3]uint32{a, b, c} {
			s.polyOf[v] = removeFromSorted(s.polyOf[v], lastIdx)
			s.polyOf[v] = appendSortedDesc(s.polyOf[v], polyIdx)
		}
	}
	s.indices = s.indices[:lastBase]
}

// PolygonsOf returns the (descending-sorted) polygon indices using vertex idx.
func (s *Side) PolygonsOf(idx uint32) []uint32 { return s.polyOf[idx] }

// RemoveVertexCascade removes a vertex and every triangle that references
// it, in descending polygon-index order so earlier swap-removes don't
// invalidate later indices still queued for removal.
func (s *Side) RemoveVertexCascade(idx uint32) {
	polys := append([]uint32(nil), s.polyOf[idx]...)
	for _, p := range polys {
		s.RemovePolygon(p)
	}
	s.RemoveVertex(idx)
}

func appendSortedDesc(list []uint32, v uint32) []uint32 {
	i := 0
	for i < len(list) && list[i] > v {
		i++
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

func removeFromSorted(list []uint32, v uint32) []uint32 {
	for i, x := range list {
		if x == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
