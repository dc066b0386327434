// Package setupfile parses the line-oriented, whitespace-tokenised setup
// file describing the octree's extent, the stock/parts geometry, and the
// initial machine pose. Parsing follows the teacher's Builder error
// strategy (soypat-gsdf's accumErrs/Err): a bad directive is recorded and
// skipped rather than aborting the whole file, so one typo doesn't discard
// an otherwise-valid setup.
package setupfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/cutsim/cutsim/vec3"
)

// StepMode selects how STEP_SIZE's value is interpreted.
type StepMode uint8

const (
	StepFixed StepMode = iota
	StepVariable
)

// ShapeKind is one of the four recognised stock/parts primitives.
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota
	ShapeCylinder
	ShapeSphere
	ShapeSTL
)

// Operation is how a shape combines with whatever precedes it in its block.
type Operation uint8

const (
	OpSum Operation = iota
	OpDiff
	OpIntersect
)

// Shape is one STOCK/PARTS block entry.
type Shape struct {
	Kind ShapeKind

	Width, Length, Height, Radius float32
	Corner, Center, RCenter       vec3.Vec
	Alpha, Gamma                  float32 // ROTATION, radians.
	Op                            Operation
	File                          string
}

// Pose is a position plus optional orientation, in radians, read from
// USER_ORIGIN/INITIAL_POSITION.
type Pose struct {
	Pos       vec3.Vec
	A, B, C   float32
	Multiaxis bool
}

// Setup is the fully parsed setup file.
type Setup struct {
	CubeSize float32
	MaxDepth int
	Center   vec3.Vec

	UserOrigin      Pose
	InitialPosition Pose

	StepMode StepMode
	Step     float32

	SCF float32

	Stock []Shape
	Parts []Shape
}

// Parse reads a setup file, accumulating one error per offending line and
// continuing; the returned error (if non-nil) joins every accumulated
// problem via errors.Join, matching the aggregated-error-count contract
// in the spec's error handling design.
func Parse(r io.Reader) (*Setup, error) {
	s := &Setup{MaxDepth: -1}
	var errs []error

	sc := bufio.NewScanner(r)
	lineNo := 0
	var block *[]Shape // &s.Stock or &s.Parts while inside a STOCK/PARTS block.
	var cur *Shape     // the shape currently being populated inside a block.

	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		directive := strings.ToUpper(fields[0])
		args := fields[1:]

		switch {
		case directive == "END" && len(args) == 1 && (strings.ToUpper(args[0]) == "STOCK" || strings.ToUpper(args[0]) == "PARTS"):
			if cur != nil && block != nil {
				*block = append(*block, *cur)
			}
			cur, block = nil, nil
			continue
		case directive == "STOCK":
			block = &s.Stock
			continue
		case directive == "PARTS":
			block = &s.Parts
			continue
		}

		if block != nil {
			if kind, ok := shapeKind(directive); ok {
				if cur != nil {
					*block = append(*block, *cur)
				}
				cur = &Shape{Kind: kind}
				continue
			}
			if cur == nil {
				errs = append(errs, lineErr(lineNo, "directive %q outside a shape declaration", directive))
				continue
			}
			if err := applyShapeDirective(cur, directive, args); err != nil {
				errs = append(errs, lineErr(lineNo, "%v", err))
			}
			continue
		}

		if err := applyTopLevel(s, directive, args); err != nil {
			errs = append(errs, lineErr(lineNo, "%v", err))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if s.MaxDepth >= 0 && s.MaxDepth < 3 {
		errs = append(errs, errors.New("OCTREE_MAX_DEPTH must be >= 3"))
	}
	if len(errs) > 0 {
		return s, fmt.Errorf("setupfile: %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return s, nil
}

func lineErr(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

func shapeKind(directive string) (ShapeKind, bool) {
	switch directive {
	case "RECTANGLE":
		return ShapeRectangle, true
	case "CYLINDER":
		return ShapeCylinder, true
	case "SPHERE":
		return ShapeSphere, true
	case "STL":
		return ShapeSTL, true
	default:
		return 0, false
	}
}

func degToRad(d float32) float32 { return d * math32.Pi / 180 }

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d numeric argument(s), got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", args[i], err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func applyTopLevel(s *Setup, directive string, args []string) error {
	switch directive {
	case "OCTREE_CUBE_SIZE":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		s.CubeSize = v[0]
	case "OCTREE_MAX_DEPTH":
		n, err := strconv.Atoi(orFirst(args))
		if err != nil {
			return fmt.Errorf("bad integer: %w", err)
		}
		s.MaxDepth = n
	case "OCTREE_CENTER":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		s.Center = vec3.Vec{X: v[0], Y: v[1], Z: v[2]}
	case "USER_ORIGIN":
		p, err := parsePose(args)
		if err != nil {
			return err
		}
		s.UserOrigin = p
	case "INITIAL_POSITION":
		p, err := parsePose(args)
		if err != nil {
			return err
		}
		s.InitialPosition = p
	case "STEP_SIZE":
		if len(args) < 2 {
			return errors.New("STEP_SIZE requires a mode and a value")
		}
		switch strings.ToUpper(args[0]) {
		case "VARIABLE":
			s.StepMode = StepVariable
		case "FIXED":
			s.StepMode = StepFixed
		default:
			return fmt.Errorf("unknown STEP_SIZE mode %q", args[0])
		}
		v, err := parseFloats(args[1:], 1)
		if err != nil {
			return err
		}
		s.Step = v[0]
	case "SCF":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		s.SCF = v[0]
	default:
		return fmt.Errorf("unrecognised directive %q", directive)
	}
	return nil
}

func orFirst(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func parsePose(args []string) (Pose, error) {
	if len(args) != 3 && len(args) != 6 {
		return Pose{}, fmt.Errorf("expected 3 or 6 numeric arguments, got %d", len(args))
	}
	v, err := parseFloats(args, len(args))
	if err != nil {
		return Pose{}, err
	}
	p := Pose{Pos: vec3.Vec{X: v[0], Y: v[1], Z: v[2]}}
	if len(v) == 6 {
		p.A, p.B, p.C = degToRad(v[3]), degToRad(v[4]), degToRad(v[5])
		p.Multiaxis = true
	}
	return p, nil
}

func applyShapeDirective(sh *Shape, directive string, args []string) error {
	switch directive {
	case "WIDTH":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		sh.Width = v[0]
	case "LENGTH":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		sh.Length = v[0]
	case "HIGHT": // the external directive keeps this spelling; our field doesn't have to.
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		sh.Height = v[0]
	case "RADIUS":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		sh.Radius = v[0]
	case "CORNER":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		sh.Corner = vec3.Vec{X: v[0], Y: v[1], Z: v[2]}
	case "CENTER":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		sh.Center = vec3.Vec{X: v[0], Y: v[1], Z: v[2]}
	case "RCENTER":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		sh.RCenter = vec3.Vec{X: v[0], Y: v[1], Z: v[2]}
	case "ROTATION":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		sh.Alpha, sh.Gamma = degToRad(v[0]), degToRad(v[1])
	case "OPERATION":
		if len(args) < 1 {
			return errors.New("OPERATION requires a value")
		}
		switch strings.ToUpper(args[0]) {
		case "SUM":
			sh.Op = OpSum
		case "DIFF":
			sh.Op = OpDiff
		case "INTERSECT":
			sh.Op = OpIntersect
		default:
			return fmt.Errorf("unknown OPERATION %q", args[0])
		}
	case "FILE":
		if len(args) < 1 {
			return errors.New("FILE requires a path")
		}
		sh.File = args[0]
	default:
		return fmt.Errorf("unrecognised shape directive %q", directive)
	}
	return nil
}
