// Package motion samples a finite program of canonical moves (straight
// feeds/traverses, helical arcs, and motionless spindle/coolant/tool
// events) into a lazy pose stream consumed one sample at a time by the
// simulation orchestrator. The pull-based Driver.Next method is the
// back-pressure hook described by the spec: nothing is computed ahead of
// what the caller actually asks for, mirroring the request/response
// message-loop idiom the teacher's windowing layer uses for its own
// main-thread/device-thread handoff (gazed-vu/vu.go's reqs channel) but
// realised here as a plain synchronous iterator since there is exactly
// one consumer and no cross-goroutine boundary to cross.
package motion

import (
	"github.com/chewxy/math32"
	"github.com/cutsim/cutsim/vec3"
)

// Kind distinguishes the three canonical move shapes.
type Kind uint8

const (
	Straight Kind = iota
	Helical
	Motionless
)

// SpindleBits are the motionless-event flags a move can carry, independent
// of its Kind (a straight or helical move can also turn the spindle on).
type SpindleBits uint8

const (
	SpindleOn SpindleBits = 1 << iota
	SpindleReverse
	CoolantOn
	ToolChange
	PlaneSelectXY
	PlaneSelectXZ
	PlaneSelectYZ
	ProgramEnd
)

// Plunge records the sign of Δz across a move, sampled into every pose
// emitted for that move.
type Plunge int8

const (
	PlungeNone Plunge = iota
	PlungeDown
	PlungeUp
)

// Pose is a tool position and, for multi-axis programs, orientation.
type Pose struct {
	X, Y, Z   float32
	A, B, C   float32
	Multiaxis bool // true if A/B/C are meaningful for this pose.
}

// OrientationDir returns the unit orientation vector encoded by A,B,C,
// treated as successive rotations of +Z the same way a volume.Cutter is
// posed: rotate about X by A, then about Z by C (B is carried but not
// part of the axis direction, matching a 5-axis head with an independent
// spindle roll).
func (p Pose) OrientationDir() vec3.Vec {
	if !p.Multiaxis {
		return vec3.Vec{Z: 1}
	}
	return vec3.RotateXZ(vec3.Vec{Z: 1}, p.A, p.C)
}

func (p Pose) xyz() vec3.Vec { return vec3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// XYZ returns the pose's translational component, ignoring orientation.
func (p Pose) XYZ() vec3.Vec { return p.xyz() }

func lerpPose(a, b Pose, t float32) Pose {
	return Pose{
		X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: a.Z + (b.Z-a.Z)*t,
		A: a.A + (b.A-a.A)*t, B: a.B + (b.B-a.B)*t, C: a.C + (b.C-a.C)*t,
		Multiaxis: a.Multiaxis || b.Multiaxis,
	}
}

// Plane picks the two in-plane axis components (U,V) and the
// out-of-plane component (W) for a helical move, selected by the
// motion program's active-plane directive (G17/G18/G19 in conventional
// g-code terms).
type Plane struct {
	u, v, w func(Pose) float32
	setUV   func(p *Pose, u, v float32)
	setW    func(p *Pose, w float32)
}

// SetUV writes the active plane's two in-plane coordinates into p.
func (pl Plane) SetUV(p *Pose, u, v float32) { pl.setUV(p, u, v) }

// SetW writes the active plane's out-of-plane coordinate into p.
func (pl Plane) SetW(p *Pose, w float32) { pl.setW(p, w) }

// PlaneXY, PlaneXZ, PlaneYZ are the three canonical active planes.
var (
	PlaneXY = Plane{
		u: func(p Pose) float32 { return p.X }, v: func(p Pose) float32 { return p.Y }, w: func(p Pose) float32 { return p.Z },
		setUV: func(p *Pose, u, v float32) { p.X, p.Y = u, v },
		setW:  func(p *Pose, w float32) { p.Z = w },
	}
	PlaneXZ = Plane{
		u: func(p Pose) float32 { return p.X }, v: func(p Pose) float32 { return p.Z }, w: func(p Pose) float32 { return p.Y },
		setUV: func(p *Pose, u, v float32) { p.X, p.Z = u, v },
		setW:  func(p *Pose, w float32) { p.Y = w },
	}
	PlaneYZ = Plane{
		u: func(p Pose) float32 { return p.Y }, v: func(p Pose) float32 { return p.Z }, w: func(p Pose) float32 { return p.X },
		setUV: func(p *Pose, u, v float32) { p.Y, p.Z = u, v },
		setW:  func(p *Pose, w float32) { p.X = w },
	}
)

// Move is one canonical program instruction.
type Move struct {
	Kind Kind
	Start,
	End Pose
	Feed float32
	Line int

	Spindle SpindleBits

	// Helical-only fields.
	Plane    Plane
	Center   [2]float32 // centre in the active plane's (u,v) coordinates.
	Rotation int        // signed turn count, |Rotation| >= 1: |Rotation|-1 whole turns are added to the base arc.
}

// startAngle/endAngle/deltaTheta compute the helical sweep angle, unwrapped
// by the sign of Rotation and extended by whole turns for |Rotation|>1.
func (m Move) startAngle() float32 {
	return math32.Atan2(m.Plane.v(m.Start)-m.Center[1], m.Plane.u(m.Start)-m.Center[0])
}

func (m Move) endAngle() float32 {
	return math32.Atan2(m.Plane.v(m.End)-m.Center[1], m.Plane.u(m.End)-m.Center[0])
}

const twoPi = 2 * math32.Pi

func (m Move) deltaTheta() float32 {
	start, end := m.startAngle(), m.endAngle()
	dtheta := end - start
	sign := float32(1)
	if m.Rotation < 0 {
		sign = -1
	}
	// Unwrap to the direction implied by the rotation sign.
	for dtheta*sign < 0 {
		dtheta += sign * twoPi
	}
	turns := m.Rotation
	if turns < 0 {
		turns = -turns
	}
	if dtheta == 0 {
		// Start and end coincide (a full circle): the base arc carries no
		// fractional sweep of its own, so all |Rotation| turns are whole
		// revolutions (Rotation=1 with Start==End is one complete circle,
		// not a zero-length move) rather than the usual |Rotation|-1 extra
		// turns layered on top of a nonzero fractional base arc.
		return sign * float32(turns) * twoPi
	}
	return dtheta + sign*float32(turns-1)*twoPi
}

func (m Move) radius() float32 {
	du := m.Plane.u(m.Start) - m.Center[0]
	dv := m.Plane.v(m.Start) - m.Center[1]
	return math32.Hypot(du, dv)
}

// Length returns the move's arc length: Euclidean distance for a straight
// move, the helical formula |Δθ|·√(r²+c²) augmented by an orientation arc
// term for multi-axis moves, or zero for a motionless event.
func (m Move) Length() float32 {
	switch m.Kind {
	case Straight:
		return maxf(vec3.Distance(m.Start.xyz(), m.End.xyz()), m.orientationLength())
	case Helical:
		dtheta := m.deltaTheta()
		dz := m.Plane.w(m.End) - m.Plane.w(m.Start)
		c := float32(0)
		if dtheta != 0 {
			c = dz / dtheta
		}
		helixLen := math32.Abs(dtheta) * math32.Hypot(m.radius(), c)
		return maxf(helixLen, m.orientationLength())
	default:
		return 0
	}
}

// orientationLength is the additional rotational arc length contributed by
// orientation change on a multi-axis move: max(|start|,|end|)·‖end_dir−start_dir‖,
// using the radius from the move's own translational geometry as the lever arm.
func (m Move) orientationLength() float32 {
	if !m.Start.Multiaxis && !m.End.Multiaxis {
		return 0
	}
	r := maxf(vec3.Norm(m.Start.xyz()), vec3.Norm(m.End.xyz()))
	dirDelta := vec3.Norm(vec3.Sub(m.End.OrientationDir(), m.Start.OrientationDir()))
	return r * dirDelta
}

// Plunge classifies the move's vertical travel by the sign of Δz.
func (m Move) plunge() Plunge {
	dz := m.End.Z - m.Start.Z
	switch {
	case dz < 0:
		return PlungeDown
	case dz > 0:
		return PlungeUp
	default:
		return PlungeNone
	}
}

// Point interpolates the move's path at arc-length parameter s, clamped to
// [0, Length()] per the spec's sampler-boundary guidance. Straight moves
// interpolate linearly; helical moves rotate the start radius vector about
// the centre by θ(s) and linearly interpolate the out-of-plane axis and
// orientation.
func (m Move) Point(s float32) Pose {
	length := m.Length()
	if s < 0 {
		s = 0
	}
	if s > length {
		s = length
	}
	if length == 0 {
		return m.Start
	}
	t := s / length

	if m.Kind != Helical {
		return lerpPose(m.Start, m.End, t)
	}

	dtheta := m.deltaTheta()
	theta := m.startAngle() + dtheta*t
	r := m.radius()
	u := m.Center[0] + r*math32.Cos(theta)
	v := m.Center[1] + r*math32.Sin(theta)
	w := m.Plane.w(m.Start) + (m.Plane.w(m.End)-m.Plane.w(m.Start))*t

	p := lerpPose(m.Start, m.End, t)
	m.Plane.setUV(&p, u, v)
	m.Plane.setW(&p, w)
	return p
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
