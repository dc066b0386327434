// Package envelope holds the machine's configured soft limits — axis
// travel, feed rates, spindle power, and tool-holder geometry — and
// checks emitted poses and cutting loads against them. It plays the role
// the teacher's SDF bodies play for geometry: a small closed set of
// configuration values consulted by value, with no behaviour of its own
// beyond comparisons and a power formula.
package envelope

import "github.com/cutsim/cutsim/motion"

// LimitBits flags which configured limit(s) a sample or cutting load
// exceeded.
type LimitBits uint16

const (
	XLimit LimitBits = 1 << iota
	YLimit
	ZLimit
	ALimit
	BLimit
	CLimit
	FeedLimit
	TraverseLimit
	SpindlePowerLimit
)

// Has reports whether bit is set in r.
func (r LimitBits) Has(bit LimitBits) bool { return r&bit != 0 }

// AxisLimit is a linear or rotational soft limit, min/max inclusive.
type AxisLimit struct {
	Min, Max float32
}

func (l AxisLimit) exceeds(v float32) bool { return v < l.Min || v > l.Max }

// Envelope is the machine's configured operating envelope.
type Envelope struct {
	X, Y, Z AxisLimit
	A, B, C AxisLimit

	MaxFeedRate      float32
	TraverseFeedRate float32
	MaxSpindlePower  float32

	HolderRadius  float32
	HolderLength  float32
	SpindleRadius float32
	SpindleLength float32

	SceneRadius float32

	// SpecificCuttingForce is the user-configured coefficient (SCF in the
	// setup file) used by Power as given; Power applies no unit scaling.
	SpecificCuttingForce float32
}

// CheckLimits reports which configured axis/feed limits a sample
// violates. isTraverse distinguishes a rapid move (checked against
// TraverseFeedRate) from a feed move (checked against MaxFeedRate).
func (e Envelope) CheckLimits(s motion.Sample, isTraverse bool) LimitBits {
	var bits LimitBits
	if e.X.exceeds(s.X) {
		bits |= XLimit
	}
	if e.Y.exceeds(s.Y) {
		bits |= YLimit
	}
	if e.Z.exceeds(s.Z) {
		bits |= ZLimit
	}
	if s.Multiaxis {
		if e.A.exceeds(s.A) {
			bits |= ALimit
		}
		if e.B.exceeds(s.B) {
			bits |= BLimit
		}
		if e.C.exceeds(s.C) {
			bits |= CLimit
		}
	}
	if isTraverse {
		if s.Feed > e.TraverseFeedRate {
			bits |= TraverseLimit
		}
	} else if s.Feed > e.MaxFeedRate {
		bits |= FeedLimit
	}
	return bits
}

// Power returns the spindle power, in kW, required to remove cutCount
// corners' worth of material at the given cube resolution and feed:
// k · cube_resolution² · cut_count · feed.
func (e Envelope) Power(cubeResolution float32, cutCount int, feed float32) float32 {
	return e.SpecificCuttingForce * cubeResolution * cubeResolution * float32(cutCount) * feed
}

// CheckPower reports whether the given power draw exceeds MaxSpindlePower.
func (e Envelope) CheckPower(power float32) LimitBits {
	if power > e.MaxSpindlePower {
		return SpindlePowerLimit
	}
	return 0
}
