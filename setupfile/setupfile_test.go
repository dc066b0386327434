package setupfile

import (
	"strings"
	"testing"
)

const sample = `
# a comment line
OCTREE_CUBE_SIZE 32
OCTREE_MAX_DEPTH 8
OCTREE_CENTER 0 0 0
USER_ORIGIN 1 2 3
STEP_SIZE FIXED 0.5
SCF 0.02
STOCK
RECTANGLE
WIDTH 10
LENGTH 10
HIGHT 5
CENTER 0 0 0
OPERATION SUM
END STOCK
PARTS
SPHERE
RADIUS 2
CENTER 0 0 0
OPERATION DIFF
END PARTS
`

func TestParseWellFormed(t *testing.T) {
	s, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CubeSize != 32 {
		t.Errorf("CubeSize = %v, want 32", s.CubeSize)
	}
	if s.MaxDepth != 8 {
		t.Errorf("MaxDepth = %v, want 8", s.MaxDepth)
	}
	if len(s.Stock) != 1 || s.Stock[0].Kind != ShapeRectangle {
		t.Fatalf("expected one rectangle stock shape, got %+v", s.Stock)
	}
	if s.Stock[0].Width != 10 || s.Stock[0].Height != 5 {
		t.Errorf("rectangle dims = %+v", s.Stock[0])
	}
	if len(s.Parts) != 1 || s.Parts[0].Kind != ShapeSphere || s.Parts[0].Op != OpDiff {
		t.Fatalf("expected one sphere part with DIFF op, got %+v", s.Parts)
	}
}

func TestParseRejectsShallowDepth(t *testing.T) {
	const bad = "OCTREE_CUBE_SIZE 10\nOCTREE_MAX_DEPTH 2\n"
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for OCTREE_MAX_DEPTH below 3")
	}
}

func TestParseAccumulatesPerLineErrors(t *testing.T) {
	const bad = "OCTREE_CUBE_SIZE notanumber\nBOGUS_DIRECTIVE 1\nOCTREE_CENTER 1 2 3\n"
	s, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
	// Parsing continues past the bad lines: OCTREE_CENTER still landed.
	if s.Center.X != 1 || s.Center.Z != 3 {
		t.Errorf("expected parsing to continue after bad lines")
	}
}
