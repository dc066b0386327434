package motion

import "github.com/chewxy/math32"

// SampleCount returns the number of poses a move at step size ds samples
// to: at least two, otherwise ceil(length/ds)+1, per S3.
func (m Move) SampleCount(ds float32) int {
	if ds <= 0 {
		return 2
	}
	n := int(math32.Ceil(m.Length()/ds)) + 1
	if n < 2 {
		n = 2
	}
	return n
}

// Sample is one emitted pose tuple: position, optional orientation (via
// Pose.Multiaxis), the originating program line, active spindle/coolant
// bits, commanded feed, and the plunge direction for this move.
type Sample struct {
	Pose
	Line    int
	Spindle SpindleBits
	Feed    float32
	Plunge  Plunge
}

// Program is a finite ordered sequence of canonical moves.
type Program struct {
	Moves []Move
}

// Driver walks a Program one sample at a time. Next is the back-pressure
// hook: the caller must call it again to advance, whether that means the
// next sample within the current move or the first sample of the next
// move. A motionless event yields exactly one sample carrying its bits
// and no motion.
type Driver struct {
	prog Program
	ds   float32

	moveIdx   int
	sampleIdx int
	total     int // sample count for the current move, computed once.
	done      bool
}

// NewDriver creates a Driver over prog sampling straight/helical moves at
// step size ds (world units per sample along the move's arc length).
func NewDriver(prog Program, ds float32) *Driver {
	return &Driver{prog: prog, ds: ds}
}

// Next returns the next sample and true, or a zero Sample and false once
// the program is exhausted.
func (d *Driver) Next() (Sample, bool) {
	if d.done {
		return Sample{}, false
	}
	for {
		if d.moveIdx >= len(d.prog.Moves) {
			d.done = true
			return Sample{}, false
		}
		mv := d.prog.Moves[d.moveIdx]

		if mv.Kind == Motionless {
			d.moveIdx++
			return Sample{Pose: mv.Start, Line: mv.Line, Spindle: mv.Spindle, Feed: mv.Feed}, true
		}

		if d.total == 0 {
			d.total = mv.SampleCount(d.ds)
		}
		if d.sampleIdx >= d.total {
			d.moveIdx++
			d.sampleIdx = 0
			d.total = 0
			continue
		}
		frac := float32(d.sampleIdx) / float32(d.total-1)
		s := frac * mv.Length()
		pose := mv.Point(s)
		d.sampleIdx++
		return Sample{Pose: pose, Line: mv.Line, Spindle: mv.Spindle, Feed: mv.Feed, Plunge: mv.plunge()}, true
	}
}

// Done reports whether the program has been fully consumed.
func (d *Driver) Done() bool { return d.done }
