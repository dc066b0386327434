package isosurface

import (
	"testing"

	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

func TestWireframeExtractorEmitsTwelveEdgesPerLeaf(t *testing.T) {
	tree, err := octree.NewTree(vec3.Vec{}, 16, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)

	var leaves int
	var walk func(c *octree.Cell)
	walk = func(c *octree.Cell) {
		if c.IsLeaf() {
			leaves++
			return
		}
		for _, ch := range c.Children() {
			if ch != nil {
				walk(ch)
			}
		}
	}
	walk(tree.Root())

	w := NewWireframe(WireframeOptions{DrawInside: true, DrawOutside: true, DrawUndecided: true})
	edges := w.Extract(tree)
	if got, want := len(edges), leaves*12; got != want {
		t.Errorf("got %d edges for %d leaves, want %d (12 per leaf)", got, leaves, want)
	}
}

func TestWireframeExtractorHonorsStateFilter(t *testing.T) {
	tree, err := octree.NewTree(vec3.Vec{}, 16, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)

	w := NewWireframe(WireframeOptions{})
	if edges := w.Extract(tree); len(edges) != 0 {
		t.Errorf("extractor with every draw flag off returned %d edges, want 0", len(edges))
	}
}

func TestDefaultWireframeOptionsMatchesTeacherDefaults(t *testing.T) {
	opts := DefaultWireframeOptions()
	if !opts.DrawInside || !opts.DrawUndecided || opts.DrawOutside {
		t.Errorf("default options = %+v, want inside+undecided on, outside off", opts)
	}
}
