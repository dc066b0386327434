package isosurface

import (
	"testing"

	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

func TestTriangulateTetraAllInsideOrOutside(t *testing.T) {
	p := [4]vec3.Vec{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}}
	if tris := triangulateTetra(p, [4]float32{1, 1, 1, 1}); tris != nil {
		t.Errorf("all-inside tetra produced %d triangles, want 0", len(tris))
	}
	if tris := triangulateTetra(p, [4]float32{-1, -1, -1, -1}); tris != nil {
		t.Errorf("all-outside tetra produced %d triangles, want 0", len(tris))
	}
}

func TestTriangulateTetraSingleCorner(t *testing.T) {
	p := [4]vec3.Vec{{X: 0}, {X: 2}, {Y: 2}, {Z: 2}}
	tris := triangulateTetra(p, [4]float32{1, -1, -1, -1})
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle for a single inside corner, got %d", len(tris))
	}
	// Every triangle vertex lies on an edge from corner 0 (at its midpoint for
	// these values), so it stays within the tetrahedron's bounding box.
	for _, v := range tris[0] {
		if v.X < 0 || v.X > 2 || v.Y < 0 || v.Y > 2 || v.Z < 0 || v.Z > 2 {
			t.Errorf("triangle vertex %v outside tetrahedron bounds", v)
		}
	}
}

func TestTriangulateTetraTwoTwoSplit(t *testing.T) {
	p := [4]vec3.Vec{{X: 0}, {X: 2}, {Y: 2}, {Z: 2}}
	tris := triangulateTetra(p, [4]float32{1, 1, -1, -1})
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles for a 2/2 split, got %d", len(tris))
	}
}

func TestExtractorUpdateProducesGeometryAndMarksValid(t *testing.T) {
	tree, err := octree.NewTree(vec3.Vec{}, 16, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)
	buf := meshbuf.New()
	ex := New(buf)
	ex.Update(tree)

	if !tree.Root().MeshValid() {
		t.Error("root should be mesh-valid after Update")
	}
	if len(buf.Work().Vertices()) == 0 {
		t.Error("expected some surface geometry extracted from a sphere whose surface lies inside the tree bounds")
	}
}

func TestExtractorUpdateReleasesVerticesOnPrune(t *testing.T) {
	tree, err := octree.NewTree(vec3.Vec{}, 16, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)
	buf := meshbuf.New()
	ex := New(buf)
	ex.Update(tree)

	// A sphere entirely enclosing the tree drives every corner negative, so
	// every leaf turns Outside and each subtree collapses back to a leaf via
	// pruning, dropping the vertices its children owned from the first
	// extraction. Pruning should leave no cell's old vertex ids dangling in
	// the buffer.
	enclosing, err := volume.NewSphere(vec3.Vec{}, 1000, volume.TagCollision)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(enclosing, octree.OpSubtract, volume.TagCollision)
	ex.Update(tree)

	work := buf.Work()
	if got := len(work.Vertices()); got != 0 {
		t.Errorf("expected an all-outside tree to have no surface geometry left, got %d vertices", got)
	}
	var walk func(c *octree.Cell)
	walk = func(c *octree.Cell) {
		for _, vid := range c.VertexIDs() {
			if int(vid) >= len(work.Vertices()) {
				t.Errorf("cell retains dangling vertex id %d past buffer length %d", vid, len(work.Vertices()))
			}
		}
		for _, ch := range c.Children() {
			if ch != nil {
				walk(ch)
			}
		}
	}
	walk(tree.Root())
}

func TestExtractorUpdateSkipsValidSubtree(t *testing.T) {
	tree, err := octree.NewTree(vec3.Vec{}, 16, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)
	buf := meshbuf.New()
	ex := New(buf)
	ex.Update(tree)
	firstCount := len(buf.Work().Vertices())

	ex.Update(tree) // nothing invalidated since the last call; should add no new geometry.
	if got := len(buf.Work().Vertices()); got != firstCount {
		t.Errorf("second Update with nothing invalidated changed vertex count from %d to %d", firstCount, got)
	}
}
