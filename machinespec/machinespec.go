// Package machinespec parses the machine-spec file: axis soft limits,
// feed rates, spindle power, and holder/spindle/scene geometry, producing
// an envelope.Envelope. Like setupfile, it accumulates one error per bad
// line rather than aborting, following the teacher's Builder error
// strategy.
package machinespec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/cutsim/cutsim/envelope"
)

// Parse reads a machine-spec file into an envelope.Envelope.
func Parse(r io.Reader) (envelope.Envelope, error) {
	var e envelope.Envelope
	var errs []error

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		directive := strings.ToUpper(fields[0])
		args := fields[1:]
		if err := apply(&e, directive, args); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	if err := sc.Err(); err != nil {
		return e, err
	}
	if len(errs) > 0 {
		return e, fmt.Errorf("machinespec: %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return e, nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseFloat(args []string) (float32, error) {
	if len(args) < 1 {
		return 0, errors.New("missing numeric argument")
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", args[0], err)
	}
	return float32(v), nil
}

func degToRad(d float32) float32 { return d * math32.Pi / 180 }

func apply(e *envelope.Envelope, directive string, args []string) error {
	v, err := parseFloat(args)
	if err != nil {
		return err
	}
	switch directive {
	case "MAX_X_LIMIT":
		e.X.Max = v
	case "MIN_X_LIMIT":
		e.X.Min = v
	case "MAX_Y_LIMIT":
		e.Y.Max = v
	case "MIN_Y_LIMIT":
		e.Y.Min = v
	case "MAX_Z_LIMIT":
		e.Z.Max = v
	case "MIN_Z_LIMIT":
		e.Z.Min = v
	case "MAX_A_LIMIT":
		e.A.Max = degToRad(v)
	case "MIN_A_LIMIT":
		e.A.Min = degToRad(v)
	case "MAX_B_LIMIT":
		e.B.Max = degToRad(v)
	case "MIN_B_LIMIT":
		e.B.Min = degToRad(v)
	case "MAX_C_LIMIT":
		e.C.Max = degToRad(v)
	case "MIN_C_LIMIT":
		e.C.Min = degToRad(v)
	case "MAX_FEED_RATE":
		e.MaxFeedRate = v
	case "TRAVERSE_FEED_RATE":
		e.TraverseFeedRate = v
	case "MAX_SPINDLE_POWER":
		e.MaxSpindlePower = v
	case "HOLDER_RADIUS":
		e.HolderRadius = v
	case "HOLDER_LENGTH":
		e.HolderLength = v
	case "SPINDLE_RADIUS":
		e.SpindleRadius = v
	case "SPINDLE_LENGTH":
		e.SpindleLength = v
	case "SCENE_RADIUS":
		e.SceneRadius = v
	default:
		return fmt.Errorf("unrecognised directive %q", directive)
	}
	return nil
}
