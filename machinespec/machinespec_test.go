package machinespec

import (
	"strings"
	"testing"
)

const sample = `
MAX_X_LIMIT 200
MIN_X_LIMIT -200
MAX_FEED_RATE 1000
TRAVERSE_FEED_RATE 3000
MAX_SPINDLE_POWER 7.5
HOLDER_RADIUS 15
HOLDER_LENGTH 40
MAX_A_LIMIT 90
`

func TestParseWellFormed(t *testing.T) {
	e, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.X.Max != 200 || e.X.Min != -200 {
		t.Errorf("X limits = %+v", e.X)
	}
	if e.MaxSpindlePower != 7.5 {
		t.Errorf("MaxSpindlePower = %v, want 7.5", e.MaxSpindlePower)
	}
	// 90 degrees in, radians out.
	if e.A.Max < 1.57 || e.A.Max > 1.58 {
		t.Errorf("A.Max = %v, want ~pi/2", e.A.Max)
	}
}

func TestParseAccumulatesErrors(t *testing.T) {
	const bad = "MAX_X_LIMIT notanumber\nBOGUS 1\n"
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
}
