// Package interp drives the interpreter subprocess and turns its
// canonical-line output into a motion.Program. The canonical line format
// itself — "N <linenum> COMMAND(arg, arg, ...)" tokenised on "(), " — and
// the STRAIGHT_TRAVERSE/STRAIGHT_FEED/ARC_FEED/motionless command set are
// grounded on the original implementation's canonLine.hpp, linearMotion.cpp
// and helicalMotion.cpp (see original_source's g2m package).
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cutsim/cutsim/motion"
)

// Tokens is one parsed canonical line: its program line number, command
// name, and the remaining arguments as raw strings.
type Tokens struct {
	Line    int
	Command string
	Args    []string
}

// Tokenize splits a raw canonical line on '(', ')', ',' and whitespace,
// expecting the shape "N <linenum> COMMAND(a, b, c)".
func Tokenize(raw string) (Tokens, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '(' || r == ')' || r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) < 3 || fields[0] != "N" {
		return Tokens{}, fmt.Errorf("malformed canonical line %q", raw)
	}
	lineNum, err := strconv.Atoi(fields[1])
	if err != nil {
		return Tokens{}, fmt.Errorf("bad line number in %q: %w", raw, err)
	}
	return Tokens{Line: lineNum, Command: fields[2], Args: fields[3:]}, nil
}

func (t Tokens) arg(i int) (float32, error) {
	if i < 0 {
		i += len(t.Args)
	}
	if i < 0 || i >= len(t.Args) {
		return 0, fmt.Errorf("%s: argument %d out of range (have %d)", t.Command, i, len(t.Args))
	}
	v, err := strconv.ParseFloat(t.Args[i], 32)
	if err != nil {
		return 0, fmt.Errorf("%s: bad argument %q: %w", t.Command, t.Args[i], err)
	}
	return float32(v), nil
}

// Status is the running machine state carried from one canonical line to
// the next, mirroring machineStatus: current pose, active plane, spindle
// bits and feed rate.
type Status struct {
	Pose    motion.Pose
	Plane   motion.Plane
	Spindle motion.SpindleBits
	Feed    float32
}

// NewStatus returns the initial machine status at program start.
func NewStatus() Status {
	return Status{Plane: motion.PlaneXY}
}

// Translate advances status by one canonical line, returning the
// resulting Move (if the line was motion or a motionless event worth
// recording) and the updated status. A nil move with a nil error means
// the line was informational (e.g. a comment) and produced nothing to
// schedule.
func Translate(tok Tokens, status Status) (*motion.Move, Status, error) {
	switch tok.Command {
	case "STRAIGHT_TRAVERSE", "STRAIGHT_FEED":
		end, err := poseFromArgs(tok)
		if err != nil {
			return nil, status, err
		}
		mv := motion.Move{
			Kind: motion.Straight, Start: status.Pose, End: end,
			Feed: feedFor(tok.Command, status), Line: tok.Line, Spindle: status.Spindle,
		}
		status.Pose = end
		return &mv, status, nil

	case "ARC_FEED":
		mv, end, err := arcFeed(tok, status)
		if err != nil {
			return nil, status, err
		}
		status.Pose = end
		return &mv, status, nil

	case "SET_FEED_RATE":
		v, err := tok.arg(0)
		if err != nil {
			return nil, status, err
		}
		status.Feed = v
		return nil, status, nil

	case "START_SPINDLE_CLOCKWISE":
		status.Spindle |= motion.SpindleOn
		status.Spindle &^= motion.SpindleReverse
		return motionless(tok, status), status, nil
	case "START_SPINDLE_COUNTERCLOCKWISE":
		status.Spindle |= motion.SpindleOn | motion.SpindleReverse
		return motionless(tok, status), status, nil
	case "STOP_SPINDLE_TURNING":
		status.Spindle &^= motion.SpindleOn | motion.SpindleReverse
		return motionless(tok, status), status, nil

	case "FLOOD_ON", "MIST_ON":
		status.Spindle |= motion.CoolantOn
		return motionless(tok, status), status, nil
	case "FLOOD_OFF", "MIST_OFF":
		status.Spindle &^= motion.CoolantOn
		return motionless(tok, status), status, nil

	case "SELECT_TOOL", "CHANGE_TOOL":
		status.Spindle |= motion.ToolChange
		mv := motionless(tok, status)
		status.Spindle &^= motion.ToolChange
		return mv, status, nil

	case "SELECT_PLANE":
		if len(tok.Args) < 1 {
			return nil, status, fmt.Errorf("SELECT_PLANE: missing plane argument")
		}
		switch tok.Args[0] {
		case "CANON_PLANE_XY":
			status.Plane = motion.PlaneXY
		case "CANON_PLANE_XZ":
			status.Plane = motion.PlaneXZ
		case "CANON_PLANE_YZ":
			status.Plane = motion.PlaneYZ
		default:
			return nil, status, fmt.Errorf("SELECT_PLANE: unknown plane %q", tok.Args[0])
		}
		return nil, status, nil

	case "PROGRAM_END", "PROGRAM_STOP":
		status.Spindle |= motion.ProgramEnd
		mv := motionless(tok, status)
		return mv, status, nil

	case "COMMENT", "MESSAGE", "DWELL", "SET_FEED_MODE", "SET_SPINDLE_MODE",
		"PALLET_SHUTTLE", "SET_FEED_REFERENCE", "USE_TOOL_LENGTH_OFFSET",
		"SET_ORIGIN_OFFSETS", "SET_G5X_OFFSET", "USE_LENGTH_UNITS",
		"ENABLE_FEED_OVERRIDE", "ENABLE_SPEED_OVERRIDE", "SET_MOTION_CONTROL_MODE",
		"SET_XY_ROTATION", "SET_NAIVECAM_TOLERANCE", "SET_SPINDLE_SPEED":
		return nil, status, nil

	default:
		return nil, status, fmt.Errorf("unrecognised canonical command %q", tok.Command)
	}
}

func motionless(tok Tokens, status Status) *motion.Move {
	return &motion.Move{Kind: motion.Motionless, Start: status.Pose, End: status.Pose, Line: tok.Line, Spindle: status.Spindle}
}

func feedFor(command string, status Status) float32 {
	if command == "STRAIGHT_TRAVERSE" {
		return 0
	}
	return status.Feed
}

// poseFromArgs reads a STRAIGHT_*/ARC_FEED-style trailing pose: the last
// six numeric tokens are always x,y,z,a,b,c (per the original's
// getPoseFromCmd), with a,b,c meaningful only when present.
func poseFromArgs(tok Tokens) (motion.Pose, error) {
	if len(tok.Args) < 3 {
		return motion.Pose{}, fmt.Errorf("%s: expected at least 3 numeric arguments", tok.Command)
	}
	x, err := tok.arg(0)
	if err != nil {
		return motion.Pose{}, err
	}
	y, err := tok.arg(1)
	if err != nil {
		return motion.Pose{}, err
	}
	z, err := tok.arg(2)
	if err != nil {
		return motion.Pose{}, err
	}
	p := motion.Pose{X: x, Y: y, Z: z}
	if len(tok.Args) >= 6 {
		a, _ := tok.arg(-3)
		b, _ := tok.arg(-2)
		c, _ := tok.arg(-1)
		p.A, p.B, p.C = a, b, c
		p.Multiaxis = true
	}
	return p, nil
}

func arcFeed(tok Tokens, status Status) (motion.Move, motion.Pose, error) {
	if len(tok.Args) < 9 {
		return motion.Move{}, motion.Pose{}, fmt.Errorf("ARC_FEED: expected at least 9 numeric arguments, got %d", len(tok.Args))
	}
	x1, _ := tok.arg(0)
	y1, _ := tok.arg(1)
	cx, _ := tok.arg(2)
	cy, _ := tok.arg(3)
	rotF, _ := tok.arg(4)
	z1, _ := tok.arg(5)

	end := status.Pose
	status.Plane.SetUV(&end, x1, y1)
	status.Plane.SetW(&end, z1)
	if len(tok.Args) >= 9 {
		a, _ := tok.arg(-3)
		b, _ := tok.arg(-2)
		c, _ := tok.arg(-1)
		end.A, end.B, end.C = a, b, c
		end.Multiaxis = true
	}

	mv := motion.Move{
		Kind: motion.Helical, Start: status.Pose, End: end,
		Plane: status.Plane, Center: [2]float32{cx, cy}, Rotation: roundInt(rotF),
		Feed: status.Feed, Line: tok.Line, Spindle: status.Spindle,
	}
	return mv, end, nil
}

func roundInt(v float32) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
