// Command cutsim drives a CNC subtractive simulation from a setup file,
// a machine-spec file, a tool table, and a canonical-line interpreter
// subprocess, optionally displaying the result in a desktop viewer.
// Flag parsing and the run()-returns-error/main()-calls-log.Fatal split
// follow the teacher's examples/*/main.go convention (e.g.
// examples/gasket/main.go); runtime.LockOSThread in init is carried over
// for the same reason the teacher carries it — any OpenGL context must
// live on a single locked OS thread.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/cutsim/cutsim/envelope"
	"github.com/cutsim/cutsim/interp"
	"github.com/cutsim/cutsim/internal/viewer"
	"github.com/cutsim/cutsim/isosurface"
	"github.com/cutsim/cutsim/machinespec"
	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/motion"
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/persist"
	"github.com/cutsim/cutsim/setupfile"
	"github.com/cutsim/cutsim/sim"
	"github.com/cutsim/cutsim/tooltable"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

func init() {
	runtime.LockOSThread()
}

const defaultInitialDepth = 2

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "YAML file of last-used paths (optional, saved after a successful run)")
		setupPath   = flag.String("setup", "", "setup file path")
		specPath    = flag.String("machinespec", "", "machine-spec file path")
		toolPath    = flag.String("tooltable", "", "tool table file path")
		interpPath  = flag.String("interp", "", "interpreter subprocess executable")
		toolSlot    = flag.Int("tool", 1, "tool table slot to load for this run")
		gui         = flag.Bool("gui", false, "show the desktop viewer")
		hudFont     = flag.String("hud-font", "", "TTF file for the viewer's status HUD")
		sampleStep  = flag.Float64("step", 0.5, "motion sampler step size (world units)")
		windowW     = flag.Int("width", 1024, "viewer window width")
		windowH     = flag.Int("height", 768, "viewer window height")
	)
	flag.Parse()

	paths := persist.Paths{Interpreter: *interpPath, ToolTable: *toolPath, Setup: *setupPath, MachineSpec: *specPath}
	if *configPath != "" {
		saved, err := persist.Load(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		paths = fillMissing(paths, saved)
	}
	if paths.Setup == "" || paths.MachineSpec == "" || paths.ToolTable == "" || paths.Interpreter == "" {
		return fmt.Errorf("setup, machinespec, tooltable and interp paths are all required")
	}

	setup, err := parseSetup(paths.Setup)
	if err != nil {
		return err
	}
	env, err := parseMachineSpec(paths.MachineSpec)
	if err != nil {
		return err
	}
	env.SpecificCuttingForce = setup.SCF
	rows, err := parseToolTable(paths.ToolTable)
	if err != nil {
		return err
	}
	row, ok := findTool(rows, *toolSlot)
	if !ok {
		return fmt.Errorf("tool slot %d not found in %s", *toolSlot, paths.ToolTable)
	}

	tree, err := buildTree(setup)
	if err != nil {
		return fmt.Errorf("building octree: %w", err)
	}
	if err := seedStock(tree, setup); err != nil {
		return fmt.Errorf("seeding stock: %w", err)
	}

	buf := meshbuf.New()
	extractor := isosurface.New(buf)
	extractor.Update(tree)

	prog, err := loadProgram(paths.Interpreter)
	if err != nil {
		return fmt.Errorf("loading motion program: %w", err)
	}
	driver := motion.NewDriver(prog, float32(*sampleStep))

	cutterAt := cutterFactory(row, env)
	orch := sim.New(tree, extractor, buf, driver, env, cutterAt, cubeResolution(setup), sim.Signals{
		Warn: func(w sim.Warning) {
			fmt.Fprintf(os.Stderr, "line %d: %s (collision=%v envelope=%v)\n", w.Line, w.Message, w.CollisionHit, w.EnvelopeHit)
		},
	})
	orch.TotalLines = len(prog.Moves)
	orch.Play()

	if *configPath != "" {
		if err := persist.Save(*configPath, paths); err != nil {
			log.Println("warning: could not save config:", err)
		}
	}

	if *gui {
		return viewer.Run(buf, orch, viewer.UIConfig{Width: *windowW, Height: *windowH, HUDFontPath: *hudFont})
	}
	return runHeadless(orch)
}

func runHeadless(orch *sim.Orchestrator) error {
	for orch.State() != sim.Stopped {
		if orch.State() == sim.Paused {
			// An unattended run treats an advisory/hard stop as fatal;
			// an interactive GUI session is the place to inspect and resume.
			return fmt.Errorf("simulation paused (power=%.2f): rerun with -gui to inspect", orch.Power())
		}
		orch.Step()
	}
	fmt.Println("done, final power estimate:", orch.Power())
	return nil
}

func fillMissing(flags, saved persist.Paths) persist.Paths {
	if flags.Interpreter == "" {
		flags.Interpreter = saved.Interpreter
	}
	if flags.ToolTable == "" {
		flags.ToolTable = saved.ToolTable
	}
	if flags.Setup == "" {
		flags.Setup = saved.Setup
	}
	if flags.MachineSpec == "" {
		flags.MachineSpec = saved.MachineSpec
	}
	return flags
}

func parseSetup(path string) (*setupfile.Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return setupfile.Parse(f)
}

func parseMachineSpec(path string) (envelope.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return envelope.Envelope{}, err
	}
	defer f.Close()
	return machinespec.Parse(f)
}

func parseToolTable(path string) ([]tooltable.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tooltable.Parse(f)
}

func findTool(rows []tooltable.Row, slot int) (tooltable.Row, bool) {
	for _, r := range rows {
		if r.Slot == slot {
			return r, true
		}
	}
	return tooltable.Row{}, false
}

func cubeResolution(s *setupfile.Setup) float32 {
	return s.CubeSize / float32(int(1)<<uint(s.MaxDepth))
}

func buildTree(s *setupfile.Setup) (*octree.Tree, error) {
	return octree.NewTree(s.Center, s.CubeSize/2, s.MaxDepth, defaultInitialDepth)
}

func seedStock(tree *octree.Tree, s *setupfile.Setup) error {
	for _, sh := range s.Stock {
		v, err := buildVolume(sh, volume.TagStock)
		if err != nil {
			return err
		}
		tree.Apply(v, opFor(sh.Op), volume.TagStock)
	}
	for _, sh := range s.Parts {
		v, err := buildVolume(sh, volume.TagParts)
		if err != nil {
			return err
		}
		tree.Apply(v, opFor(sh.Op), volume.TagParts)
	}
	return nil
}

func opFor(op setupfile.Operation) octree.Op {
	switch op {
	case setupfile.OpDiff:
		return octree.OpSubtract
	case setupfile.OpIntersect:
		return octree.OpIntersect
	default:
		return octree.OpUnion
	}
}

func buildVolume(sh setupfile.Shape, tag volume.Tag) (volume.Volume, error) {
	switch sh.Kind {
	case setupfile.ShapeSphere:
		return volume.NewSphere(sh.Center, sh.Radius, tag)
	case setupfile.ShapeRectangle:
		return volume.NewRect(sh.Center, sh.RCenter, sh.Width, sh.Length, sh.Height, sh.Alpha, sh.Gamma, tag)
	case setupfile.ShapeCylinder:
		return volume.NewCylinder(sh.Center, sh.RCenter, sh.Radius, sh.Height, sh.Alpha, sh.Gamma, tag)
	case setupfile.ShapeSTL:
		return volume.NewMeshFromSTL(sh.File, tag)
	default:
		return nil, fmt.Errorf("unhandled shape kind %v", sh.Kind)
	}
}

// cutterFactory closes over the tool table row and the envelope's
// holder/spindle geometry to build a posed cutter for any tip/axis the
// orchestrator asks for. Volumes are immutable once built, so a fresh
// cutter is constructed for every cut transaction.
func cutterFactory(row tooltable.Row, env envelope.Envelope) sim.CutterAt {
	flute := row.Diameter / 2
	fluteLen := orDefault(row.FluteLen, row.Length*0.4)
	neckRad := orDefault(row.NeckDiam/2, flute)
	reachLen := orDefault(row.ReachLen, fluteLen)
	shankRad := orDefault(row.ShankDiam/2, flute)

	return func(tip, axis vec3.Vec) (volume.Cutter, error) {
		switch row.Kind {
		case tooltable.KindBall:
			return volume.NewBallCutter(tip, axis, flute, fluteLen, neckRad, reachLen, shankRad, row.Length, env.HolderRadius, env.HolderLength, volume.TagCollision)
		default:
			return volume.NewCylinderCutter(tip, axis, flute, fluteLen, neckRad, reachLen, shankRad, row.Length, env.HolderRadius, env.HolderLength, volume.TagCollision)
		}
	}
}

func orDefault(v, def float32) float32 {
	if v == tooltable.Unset || v <= 0 {
		return def
	}
	return v
}

// loadProgram launches the interpreter subprocess and translates its
// full canonical-line output into a motion.Program up front: the
// orchestrator's own pull-based sampling happens over the resulting
// finite move list, not over the subprocess pipe directly.
func loadProgram(interpPath string) (motion.Program, error) {
	proc, err := interp.Start(interpPath)
	if err != nil {
		return motion.Program{}, err
	}
	defer proc.Close()

	status := interp.NewStatus()
	var prog motion.Program
	for {
		line, err := proc.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return motion.Program{}, err
		}
		tok, err := interp.Tokenize(line)
		if err != nil {
			return motion.Program{}, err
		}
		mv, next, err := interp.Translate(tok, status)
		if err != nil {
			return motion.Program{}, err
		}
		status = next
		if mv != nil {
			prog.Moves = append(prog.Moves, *mv)
		}
		if status.Spindle&motion.ProgramEnd != 0 {
			break
		}
	}
	return prog, nil
}
