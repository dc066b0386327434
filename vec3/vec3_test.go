package vec3

import (
	"math"
	"testing"
)

func TestRotateXZIdentity(t *testing.T) {
	p := Vec{X: 1, Y: 2, Z: 3}
	got := RotateXZ(p, 0, 0)
	if got != p {
		t.Errorf("zero rotation should be identity, got %+v want %+v", got, p)
	}
}

func TestInverseRotateXZ(t *testing.T) {
	p := Vec{X: 1, Y: 2, Z: 3}
	const alpha, gamma = 0.3, 1.1
	rotated := RotateXZ(p, alpha, gamma)
	back := InverseRotateXZ(rotated, alpha, gamma)
	if Distance(back, p) > 1e-4 {
		t.Errorf("inverse rotation mismatch: got %+v want %+v", back, p)
	}
}

func TestRotateAboutAxisQuarterTurn(t *testing.T) {
	p := Vec{X: 1}
	got := RotateAboutAxis(p, Vec{Z: 1}, math.Pi/2)
	want := Vec{Y: 1}
	if Distance(got, want) > 1e-4 {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestBoxUnion(t *testing.T) {
	a := NewBox(Vec{X: -1, Y: -1, Z: -1}, Vec{X: 1, Y: 1, Z: 1})
	b := NewBox(Vec{X: 0, Y: 0, Z: 0}, Vec{X: 2, Y: 2, Z: 2})
	u := a.Union(b)
	want := NewBox(Vec{X: -1, Y: -1, Z: -1}, Vec{X: 2, Y: 2, Z: 2})
	if u.Min != want.Min || u.Max != want.Max {
		t.Errorf("got %+v want %+v", u, want)
	}
}

func TestBoxEmptyUnion(t *testing.T) {
	var empty Box
	b := NewBox(Vec{}, Vec{X: 1, Y: 1, Z: 1})
	if got := empty.Union(b); got.Min != b.Min || got.Max != b.Max {
		t.Errorf("union with empty box should return other box unchanged, got %+v", got)
	}
}

func TestBoxOverlaps(t *testing.T) {
	a := NewBox(Vec{X: -1, Y: -1, Z: -1}, Vec{X: 1, Y: 1, Z: 1})
	b := NewBox(Vec{X: 5, Y: 5, Z: 5}, Vec{X: 6, Y: 6, Z: 6})
	if a.Overlaps(b) {
		t.Error("disjoint boxes should not overlap")
	}
	c := NewBox(Vec{X: 0.5, Y: 0.5, Z: 0.5}, Vec{X: 2, Y: 2, Z: 2})
	if !a.Overlaps(c) {
		t.Error("overlapping boxes should overlap")
	}
}

func TestBoxCorners(t *testing.T) {
	b := NewCenteredBox(Vec{}, Vec{X: 2, Y: 2, Z: 2})
	corners := b.Corners()
	for _, c := range corners {
		if math.Abs(float64(c.X)) != 1 || math.Abs(float64(c.Y)) != 1 || math.Abs(float64(c.Z)) != 1 {
			t.Errorf("corner %+v not at unit distance from center", c)
		}
	}
}

func TestIncludePointGrowsFromEmpty(t *testing.T) {
	var b Box
	if !b.Empty() {
		t.Fatal("zero value box should be empty")
	}
	b = b.IncludePoint(Vec{X: 3, Y: -2, Z: 1})
	if b.Empty() {
		t.Fatal("box should no longer be empty after IncludePoint")
	}
	if b.Min != b.Max {
		t.Errorf("single point box should have Min==Max, got min=%+v max=%+v", b.Min, b.Max)
	}
}
