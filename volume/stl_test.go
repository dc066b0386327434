package volume

import (
	"strings"
	"testing"

	"github.com/cutsim/cutsim/vec3"
)

// cubeSTL is an ASCII STL of a side-2 cube centered at the origin, each face
// wound so its facet normal points outward (the STL convention Dist relies
// on for its sign).
const cubeSTL = `solid cube
facet normal 1 0 0
outer loop
vertex 1 -1 -1
vertex 1 1 -1
vertex 1 1 1
endloop
endfacet
facet normal 1 0 0
outer loop
vertex 1 -1 -1
vertex 1 1 1
vertex 1 -1 1
endloop
endfacet
facet normal -1 0 0
outer loop
vertex -1 -1 -1
vertex -1 1 1
vertex -1 1 -1
endloop
endfacet
facet normal -1 0 0
outer loop
vertex -1 -1 -1
vertex -1 -1 1
vertex -1 1 1
endloop
endfacet
facet normal 0 1 0
outer loop
vertex -1 1 -1
vertex 1 1 1
vertex 1 1 -1
endloop
endfacet
facet normal 0 1 0
outer loop
vertex -1 1 -1
vertex -1 1 1
vertex 1 1 1
endloop
endfacet
facet normal 0 -1 0
outer loop
vertex -1 -1 -1
vertex 1 -1 -1
vertex 1 -1 1
endloop
endfacet
facet normal 0 -1 0
outer loop
vertex -1 -1 -1
vertex 1 -1 1
vertex -1 -1 1
endloop
endfacet
facet normal 0 0 1
outer loop
vertex -1 -1 1
vertex 1 -1 1
vertex 1 1 1
endloop
endfacet
facet normal 0 0 1
outer loop
vertex -1 -1 1
vertex 1 1 1
vertex -1 1 1
endloop
endfacet
facet normal 0 0 -1
outer loop
vertex -1 -1 -1
vertex 1 1 -1
vertex 1 -1 -1
endloop
endfacet
facet normal 0 0 -1
outer loop
vertex -1 -1 -1
vertex -1 1 -1
vertex 1 1 -1
endloop
endfacet
endsolid cube
`

func mustCubeMesh(t *testing.T) Volume {
	t.Helper()
	facets, err := readSTL(strings.NewReader(cubeSTL))
	if err != nil {
		t.Fatal(err)
	}
	bb := vec3.NewEmptyBox()
	for _, f := range facets {
		bb = bb.IncludePoint(f.v0)
		bb = bb.IncludePoint(f.v1)
		bb = bb.IncludePoint(f.v2)
	}
	return &mesh{facets: facets, bounds: bb, tag: TagStock}
}

// TestSTLMeshSignConvention locks in spec scenario 6: a side-2 cube centered
// at the origin must read positive inside and negative outside, matching
// the positive-inside Volume contract.
func TestSTLMeshSignConvention(t *testing.T) {
	m := mustCubeMesh(t)

	if d := m.Dist(vec3.Vec{}); !almostEqual(d, 1, 1e-3) {
		t.Errorf("dist(origin) = %v, want ~+1", d)
	}
	if d := m.Dist(vec3.Vec{X: 1.5}); !almostEqual(d, -0.5, 1e-3) {
		t.Errorf("dist(1.5,0,0) = %v, want ~-0.5", d)
	}
	if d := m.Dist(vec3.Vec{X: 1.0001}); d >= 0 {
		t.Errorf("dist(1.0001,0,0) = %v, want small negative magnitude", d)
	}
}
