// Package sim implements the simulation orchestrator (C8): the state
// machine that drives one cutter-sweep transaction at a time across the
// motion sampler (C6), the octree (C4), the iso-surface extractor (C5),
// and the machine envelope (C7). Per §5's concurrency model there is
// exactly one subtract and one extract stage in flight at a time and
// suspension only happens between transactions, so the orchestrator here
// is a plain synchronous state machine: Step runs one transaction to
// completion and returns, the same "one thing finishes before the next
// starts" sequencing the spec requires, without needing its own
// goroutines or channels to express it.
package sim

import (
	"github.com/cutsim/cutsim/envelope"
	"github.com/cutsim/cutsim/isosurface"
	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/motion"
	"github.com/cutsim/cutsim/octree"
	"github.com/cutsim/cutsim/vec3"
	"github.com/cutsim/cutsim/volume"
)

// State is the orchestrator's current machine state.
type State uint8

const (
	Idle State = iota
	Running
	CuttingOne
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case CuttingOne:
		return "CuttingOne"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// hardCollisionBits are the cutter regions that pause the simulation the
// moment they overlap remaining material; NECK is advisory only. Contact
// with a parts-tagged fixture is always hard regardless of region, and is
// tracked separately via CutResult.PartsHit.
const hardCollisionBits = volume.RegionShank | volume.RegionHolder

// Warning is a structured, program-line-attributed notice surfaced to
// the UI: a hard collision, an envelope violation, or an advisory notice.
type Warning struct {
	Line         int
	Pose         motion.Pose
	CollisionHit volume.RegionBits
	EnvelopeHit  envelope.LimitBits
	Message      string
}

// Signals are the observable callbacks the orchestrator emits; any of
// them may be left nil.
type Signals struct {
	ToolPosition func(motion.Pose)
	ToolChange   func(slot int)
	Progress     func(percent float32, line int)
	Debug        func(message string)
	Warn         func(Warning)
}

func (s Signals) toolPosition(p motion.Pose) {
	if s.ToolPosition != nil {
		s.ToolPosition(p)
	}
}
func (s Signals) progress(percent float32, line int) {
	if s.Progress != nil {
		s.Progress(percent, line)
	}
}
func (s Signals) debug(msg string) {
	if s.Debug != nil {
		s.Debug(msg)
	}
}
func (s Signals) warn(w Warning) {
	if s.Warn != nil {
		s.Warn(w)
	}
}

// CutterAt builds the posed cutter volume for a given tool tip and axis
// direction. Volumes are immutable for the lifetime of a CSG op, so the
// orchestrator asks for a freshly posed cutter before every subtract
// rather than mutating one in place.
type CutterAt func(tip, axis vec3.Vec) (volume.Cutter, error)

// Orchestrator drives one motion program against one octree.
type Orchestrator struct {
	Tree      *octree.Tree
	Extractor *isosurface.Extractor
	Buffer    *meshbuf.Buffer
	Driver    *motion.Driver
	Envelope  envelope.Envelope
	Cutter    CutterAt

	// CubeResolution is the edge length used by the envelope's power
	// formula; callers typically pass the octree's finest cell size.
	CubeResolution float32
	TotalLines     int

	Signals Signals

	state State
	power float32
}

// New creates an Idle orchestrator wired to the given collaborators.
func New(tree *octree.Tree, ex *isosurface.Extractor, buf *meshbuf.Buffer, driver *motion.Driver, env envelope.Envelope, cutter CutterAt, cubeResolution float32, sig Signals) *Orchestrator {
	return &Orchestrator{
		Tree: tree, Extractor: ex, Buffer: buf, Driver: driver, Envelope: env,
		Cutter: cutter, CubeResolution: cubeResolution, Signals: sig, state: Idle,
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State { return o.state }

// Power returns the running spindle power estimate from the last cut.
func (o *Orchestrator) Power() float32 { return o.power }

// Play transitions Idle or Paused into Running, allowing Step to dispatch
// transactions again.
func (o *Orchestrator) Play() {
	if o.state == Idle || o.state == Paused {
		o.state = Running
	}
}

// Pause requests that no further transactions dispatch after the current
// one (if any) finishes. Since Step never leaves a transaction partway
// through, calling Pause between Step calls takes effect immediately.
func (o *Orchestrator) Pause() {
	if o.state == Running {
		o.state = Paused
	}
}

// Stop discards the remainder of the move list and ends the run.
func (o *Orchestrator) Stop() {
	if o.state == Running || o.state == Paused {
		o.state = Stopped
	}
}

// Step runs exactly one cut transaction if the orchestrator is Running,
// and is a no-op otherwise. It returns the warning emitted during this
// step, if any.
func (o *Orchestrator) Step() *Warning {
	if o.state != Running {
		return nil
	}
	o.state = CuttingOne

	sample, ok := o.Driver.Next()
	if !ok {
		o.state = Stopped
		return nil
	}
	if sample.Spindle&motion.ProgramEnd != 0 {
		o.state = Stopped
		return nil
	}

	o.Signals.toolPosition(sample.Pose)

	limitBits := o.Envelope.CheckLimits(sample, false)

	cutter, err := o.Cutter(sample.XYZ(), sample.OrientationDir())
	if err != nil {
		o.Signals.debug("cutter positioning failed: " + err.Error())
		o.state = Running
		return nil
	}

	if !cutter.Bounds().Overlaps(o.Tree.Root().Bounds()) {
		// A cutter outside the octree's root bounds is a no-op advance, per §4.8.
		o.state = Running
		return nil
	}

	res := o.Tree.ApplyCutter(cutter, volume.TagCollision)

	o.power = o.Envelope.Power(o.CubeResolution, res.CutCount, sample.Feed)
	powerBits := o.Envelope.CheckPower(o.power)

	var warn *Warning
	hardHit := res.CollisionHit&hardCollisionBits != 0 || res.PartsHit
	hardEnvelope := powerBits != 0 || limitBits.Has(envelope.XLimit) || limitBits.Has(envelope.YLimit) ||
		limitBits.Has(envelope.ZLimit) || limitBits.Has(envelope.ALimit) || limitBits.Has(envelope.BLimit) ||
		limitBits.Has(envelope.CLimit) || limitBits.Has(envelope.FeedLimit)

	switch {
	case hardHit:
		w := Warning{Line: sample.Line, Pose: sample.Pose, CollisionHit: res.CollisionHit, Message: "hard collision"}
		o.Signals.warn(w)
		warn = &w
		o.state = Paused
	case hardEnvelope:
		w := Warning{Line: sample.Line, Pose: sample.Pose, EnvelopeHit: limitBits | powerBits, Message: "envelope limit exceeded"}
		o.Signals.warn(w)
		warn = &w
		o.state = Paused
	case res.CollisionHit != 0 || limitBits != 0:
		w := Warning{Line: sample.Line, Pose: sample.Pose, CollisionHit: res.CollisionHit, EnvelopeHit: limitBits, Message: "advisory"}
		o.Signals.warn(w)
		warn = &w
		o.state = Running
	default:
		o.state = Running
	}

	o.Extractor.Update(o.Tree)
	o.Buffer.Swap()

	if o.TotalLines > 0 {
		o.Signals.progress(float32(sample.Line)/float32(o.TotalLines)*100, sample.Line)
	}

	return warn
}
