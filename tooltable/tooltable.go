// Package tooltable parses the tool table: one row per tool slot giving
// the cutter kind and the dimensions needed to build a volume.Cutter.
package tooltable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ToolKind distinguishes the two cutter shapes the rest of the system
// knows how to build (matching volume.NewCylinderCutter/NewBallCutter).
type ToolKind uint8

const (
	KindCylinder ToolKind = iota
	KindBall
)

// Unset is the sentinel for omitted optional dimensions: -1, not NaN. A
// row that omits neck/reach/shank fields stores this value, and callers
// fall back to a cutter-kind
// default rather than treating 0 as a valid dimension.
const Unset = float32(-1)

// Row is one parsed tool table entry.
type Row struct {
	Slot   int
	Kind   ToolKind
	Length float32

	Diameter  float32
	FluteLen  float32
	NeckDiam  float32
	ReachLen  float32
	ShankDiam float32
}

// Parse reads the whitespace-delimited tool table:
// slot tool_id length diameter flute_len neck_diam reach_len shank_diam
// The last four fields are optional per row and default to Unset.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
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
		row, err := parseRow(fields)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return rows, fmt.Errorf("tooltable: %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return rows, nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

func parseRow(fields []string) (Row, error) {
	if len(fields) < 4 {
		return Row{}, fmt.Errorf("expected at least 4 fields (slot tool_id length diameter), got %d", len(fields))
	}
	slot, err := strconv.Atoi(fields[0])
	if err != nil || slot <= 0 {
		return Row{}, fmt.Errorf("slot must be a positive integer, got %q", fields[0])
	}
	var kind ToolKind
	switch strings.ToLower(fields[1]) {
	case "cylinder":
		kind = KindCylinder
	case "ball":
		kind = KindBall
	default:
		return Row{}, fmt.Errorf("unknown tool_id %q", fields[1])
	}
	length, err := parsePositive(fields[2])
	if err != nil {
		return Row{}, fmt.Errorf("length: %w", err)
	}
	diameter, err := parsePositive(fields[3])
	if err != nil {
		return Row{}, fmt.Errorf("diameter: %w", err)
	}
	row := Row{Slot: slot, Kind: kind, Length: length, Diameter: diameter,
		FluteLen: Unset, NeckDiam: Unset, ReachLen: Unset, ShankDiam: Unset}

	optional := []*float32{&row.FluteLen, &row.NeckDiam, &row.ReachLen, &row.ShankDiam}
	for i, dst := range optional {
		idx := 4 + i
		if idx >= len(fields) {
			break
		}
		v, err := strconv.ParseFloat(fields[idx], 32)
		if err != nil {
			return Row{}, fmt.Errorf("optional field %d: bad number %q", idx, fields[idx])
		}
		*dst = float32(v)
	}
	return row, nil
}

func parsePositive(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be > 0, got %v", v)
	}
	return float32(v), nil
}
