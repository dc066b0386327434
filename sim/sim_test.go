package sim

import (
	"testing"

	"github.com/cutsim/cutsim/envelope"
	"github.com/cutsim/cutsim/isosurface"
	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/motion"
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	tree, err := octree.NewTree(vec3.Vec{}, 16, 6, 2)
	if err != nil {
		t.Fatal(err)
	}
	stock, err := volume.NewSphere(vec3.Vec{}, 10, volume.TagStock)
	if err != nil {
		t.Fatal(err)
	}
	tree.Apply(stock, octree.OpUnion, volume.TagStock)

	buf := meshbuf.New()
	ex := isosurface.New(buf)
	ex.Update(tree)

	prog := motion.Program{Moves: []motion.Move{
		{Kind: motion.Straight, Start: motion.Pose{Z: 15}, End: motion.Pose{Z: 12}, Feed: 100, Line: 1},
	}}
	driver := motion.NewDriver(prog, 1)

	cutterAt := func(tip, axis vec3.Vec) (volume.Cutter, error) {
		return volume.NewCylinderCutter(tip, axis, 1, 2, 0.8, 3, 1.2, 6, 2, 4, volume.TagCollision)
	}

	env := envelope.Envelope{
		X: envelope.AxisLimit{Min: -100, Max: 100},
		Y: envelope.AxisLimit{Min: -100, Max: 100},
		Z: envelope.AxisLimit{Min: -100, Max: 100},
		MaxFeedRate:          10000,
		TraverseFeedRate:     10000,
		MaxSpindlePower:      1000,
		SpecificCuttingForce: 0.001,
	}

	return New(tree, ex, buf, driver, env, cutterAt, 0.5, Signals{})
}

func TestOrchestratorStaysIdleUntilPlay(t *testing.T) {
	o := newTestOrchestrator(t)
	if o.State() != Idle {
		t.Fatalf("state = %v, want Idle", o.State())
	}
	if w := o.Step(); w != nil {
		t.Errorf("Step before Play should be a no-op, got warning %+v", w)
	}
}

func TestOrchestratorRunsAndStops(t *testing.T) {
	o := newTestOrchestrator(t)
	o.Play()
	for i := 0; i < 20 && o.State() != Stopped; i++ {
		o.Step()
	}
	if o.State() != Stopped {
		t.Errorf("state after exhausting the program = %v, want Stopped", o.State())
	}
}

func TestOrchestratorPauseStopsDispatch(t *testing.T) {
	o := newTestOrchestrator(t)
	o.Play()
	o.Step()
	o.Pause()
	if o.State() != Paused {
		t.Fatalf("state = %v, want Paused", o.State())
	}
	if w := o.Step(); w != nil {
		t.Errorf("Step while Paused should be a no-op, got %+v", w)
	}
}
