package meshbuf

import (
	"testing"

	"github.com/cutsim/cutsim/vec3"
)

func TestAddAndSwap(t *testing.T) {
	b := New()
	work := b.Work()
	a := work.AddVertex(Vertex{Position: vec3.Vec{X: 1}})
	c := work.AddVertex(Vertex{Position: vec3.Vec{X: 2}})
	d := work.AddVertex(Vertex{Position: vec3.Vec{X: 3}})
	work.AddPolygon(a, c, d)

	if len(b.Render().Vertices()) != 0 {
		t.Fatal("render side should start empty")
	}
	b.Swap()
	if len(b.Render().Vertices()) != 3 {
		t.Fatalf("render side after swap has %d vertices, want 3", len(b.Render().Vertices()))
	}
	// The new work side is resynchronised to match the new render side
	// (spec §4.3), not left empty: the next extraction pass continues from
	// what the renderer is now looking at.
	if got := len(b.Work().Vertices()); got != 3 {
		t.Fatalf("new work side after swap has %d vertices, want 3 (resynced from render)", got)
	}
	if len(b.Work().PolygonsOf(a)) != 1 {
		t.Error("new work side should carry over the render side's polygon ownership too")
	}
}

func TestRemoveVertexSwapRemoveRenumbers(t *testing.T) {
	s := (*Side)(newSide())
	a := s.AddVertex(Vertex{Position: vec3.Vec{X: 0}})
	b := s.AddVertex(Vertex{Position: vec3.Vec{X: 1}})
	c := s.AddVertex(Vertex{Position: vec3.Vec{X: 2}})
	s.AddPolygon(a, b, c)

	s.RemoveVertex(a) // swap-removes with c, so index a now holds what was c.
	if len(s.vertices) != 2 {
		t.Fatalf("expected 2 vertices after removal, got %d", len(s.vertices))
	}
	if s.vertices[a].Position.X != 2 {
		t.Errorf("vertex at index %d after swap-remove = %v, want the old c", a, s.vertices[a].Position)
	}
	for _, idx := range s.indices {
		if idx >= uint32(len(s.vertices)) {
			t.Fatalf("dangling index %d after removal, only %d vertices remain", idx, len(s.vertices))
		}
	}
}

func TestRemovePolygonCascade(t *testing.T) {
	s := (*Side)(newSide())
	a := s.AddVertex(Vertex{})
	b := s.AddVertex(Vertex{})
	c := s.AddVertex(Vertex{})
	d := s.AddVertex(Vertex{})
	s.AddPolygon(a, b, c)
	s.AddPolygon(a, c, d)

	if got := len(s.PolygonsOf(a)); got != 2 {
		t.Fatalf("vertex a owns %d polygons, want 2", got)
	}
	s.RemoveVertexCascade(a)
	if len(s.indices) != 0 {
		t.Fatalf("expected all triangles removed, indices = %v", s.indices)
	}
	if len(s.vertices) != 3 {
		t.Fatalf("expected 3 vertices left, got %d", len(s.vertices))
	}
}
