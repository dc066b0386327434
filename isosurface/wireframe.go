package isosurface

import (
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
)

// cubeEdges lists the 12 edges of a cell's corner cube as pairs of indices
// into octree.Cell.Corners() (this project's own corner order), the same
// segment table the teacher's cube-wireframe debug view walks.
var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Debug colors for the three cell classifications, carried over from the
// teacher's CubeWireFrame view (inside blue, undecided green, outside a
// dim red so it reads as "background" next to the other two).
var (
	insideColor    = [3]float32{0, 0, 1}
	undecidedColor = [3]float32{0, 1, 0}
	outsideColor   = [3]float32{0.3, 0, 0}
)

// WireframeEdge is one colored line segment of a debug cube-wireframe view
// of the octree: drawing a cell's own corner cube, rather than the
// triangles its field actually produces, makes it easy to spot a mismatch
// between the grid and the surface it is supposed to bound.
type WireframeEdge struct {
	A, B  vec3.Vec
	Color [3]float32
}

// WireframeOptions selects which cell classifications to draw. The teacher
// defaults to inside+undecided and skips outside, since an outside leaf is
// by far the most common case and drawing it for every cell floods the view.
type WireframeOptions struct {
	DrawInside    bool
	DrawOutside   bool
	DrawUndecided bool
}

// DefaultWireframeOptions matches the teacher's CubeWireFrame constructor.
func DefaultWireframeOptions() WireframeOptions {
	return WireframeOptions{DrawInside: true, DrawUndecided: true}
}

// WireframeExtractor is the debug counterpart to Extractor: instead of
// triangulating the zero-crossing surface, it emits the 12-edge cube
// outline of every leaf cell whose classification is selected by opts,
// colored by that classification. It is not incremental the way Extractor
// is — every call re-walks the whole tree and rebuilds the edge list from
// scratch, matching the teacher's own "very simple algorithm... very slow"
// comment on CubeWireFrame::updateGL — since it exists for visual
// inspection while developing, not for the hot simulation path.
type WireframeExtractor struct {
	opts WireframeOptions
}

// NewWireframe creates a WireframeExtractor with the given display options.
func NewWireframe(opts WireframeOptions) *WireframeExtractor {
	return &WireframeExtractor{opts: opts}
}

// Extract walks t and returns the cube-edge outline of every leaf cell
// selected by the extractor's options.
func (w *WireframeExtractor) Extract(t *octree.Tree) []WireframeEdge {
	var edges []WireframeEdge
	w.visit(t.Root(), &edges)
	return edges
}

func (w *WireframeExtractor) visit(c *octree.Cell, edges *[]WireframeEdge) {
	if c.IsLeaf() {
		w.emit(c, edges)
		return
	}
	for _, ch := range c.Children() {
		if ch != nil {
			w.visit(ch, edges)
		}
	}
}

func (w *WireframeExtractor) emit(c *octree.Cell, edges *[]WireframeEdge) {
	var color [3]float32
	switch c.State() {
	case octree.Inside:
		if !w.opts.DrawInside {
			return
		}
		color = insideColor
	case octree.Outside:
		if !w.opts.DrawOutside {
			return
		}
		color = outsideColor
	default:
		if !w.opts.DrawUndecided {
			return
		}
		color = undecidedColor
	}
	corners := c.Corners()
	for _, e := range cubeEdges {
		*edges = append(*edges, WireframeEdge{A: corners[e[0]], B: corners[e[1]], Color: color})
	}
}
