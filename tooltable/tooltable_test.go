package tooltable

import (
	"strings"
	"testing"
)

func TestParseWellFormed(t *testing.T) {
	const sample = "1 cylinder 50 6 20 5 10 6\n2 ball 40 10\n"
	rows, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Kind != KindCylinder || rows[0].FluteLen != 20 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Kind != KindBall || rows[1].FluteLen != Unset {
		t.Errorf("row 1 = %+v, want FluteLen unset", rows[1])
	}
}

func TestParseRejectsBadSlot(t *testing.T) {
	const bad = "0 cylinder 50 6\n"
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for non-positive slot")
	}
}

func TestParseRejectsUnknownToolID(t *testing.T) {
	const bad = "1 drill 50 6\n"
	_, err := Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for unknown tool_id")
	}
}
