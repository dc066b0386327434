package interp

import (
	"testing"

	"github.com/cutsim/cutsim/motion"
)

func TestTokenizeSplitsCommandAndArgs(t *testing.T) {
	tok, err := Tokenize("N 12 STRAIGHT_FEED(1.5, 2, 3)")
	if err != nil {
		t.Fatal(err)
	}
	if tok.Line != 12 || tok.Command != "STRAIGHT_FEED" {
		t.Fatalf("got %+v", tok)
	}
	if len(tok.Args) != 3 || tok.Args[0] != "1.5" || tok.Args[2] != "3" {
		t.Fatalf("args = %v", tok.Args)
	}
}

func TestTokenizeRejectsMalformedLine(t *testing.T) {
	if _, err := Tokenize("STRAIGHT_FEED(1,2,3)"); err == nil {
		t.Fatal("expected error for line missing N prefix")
	}
	if _, err := Tokenize("N X STRAIGHT_FEED(1,2,3)"); err == nil {
		t.Fatal("expected error for non-numeric line number")
	}
}

func TestTranslateStraightFeedAdvancesPoseAndCarriesFeed(t *testing.T) {
	status := NewStatus()
	status.Feed = 250

	tok, err := Tokenize("N 1 STRAIGHT_FEED(10, 0, -5)")
	if err != nil {
		t.Fatal(err)
	}
	mv, status, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if mv == nil {
		t.Fatal("expected a move")
	}
	if mv.Kind != motion.Straight || mv.Feed != 250 {
		t.Fatalf("got %+v", mv)
	}
	if status.Pose.X != 10 || status.Pose.Z != -5 {
		t.Fatalf("status pose = %+v", status.Pose)
	}
}

func TestTranslateStraightTraverseIgnoresFeedRate(t *testing.T) {
	status := NewStatus()
	status.Feed = 250

	tok, err := Tokenize("N 2 STRAIGHT_TRAVERSE(0, 0, 20)")
	if err != nil {
		t.Fatal(err)
	}
	mv, _, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if mv.Feed != 0 {
		t.Fatalf("traverse move should carry zero feed, got %v", mv.Feed)
	}
}

func TestTranslateStraightFeedWithOrientation(t *testing.T) {
	status := NewStatus()
	tok, err := Tokenize("N 3 STRAIGHT_FEED(1, 2, 3, 0.1, 0.2, 0.3)")
	if err != nil {
		t.Fatal(err)
	}
	mv, _, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if !mv.End.Multiaxis {
		t.Fatal("expected Multiaxis end pose")
	}
	if mv.End.A != 0.1 || mv.End.B != 0.2 || mv.End.C != 0.3 {
		t.Fatalf("end pose = %+v", mv.End)
	}
}

func TestTranslateArcFeedBuildsHelicalMove(t *testing.T) {
	status := NewStatus()
	status.Pose = motion.Pose{X: 1, Y: 0, Z: 0}
	status.Feed = 100

	tok, err := Tokenize("N 4 ARC_FEED(0, 1, 0, 0, 1, 0, 0, 0, 0)")
	if err != nil {
		t.Fatal(err)
	}
	mv, next, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if mv.Kind != motion.Helical {
		t.Fatalf("got kind %v", mv.Kind)
	}
	if mv.Center != [2]float32{0, 0} {
		t.Fatalf("center = %v", mv.Center)
	}
	if mv.Rotation != 1 {
		t.Fatalf("rotation = %d", mv.Rotation)
	}
	if next.Pose.X != 0 || next.Pose.Y != 1 {
		t.Fatalf("end pose = %+v", next.Pose)
	}
}

func TestTranslateSpindleAndCoolantBits(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 5 START_SPINDLE_CLOCKWISE()")
	_, status, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if status.Spindle&motion.SpindleOn == 0 || status.Spindle&motion.SpindleReverse != 0 {
		t.Fatalf("spindle bits = %v", status.Spindle)
	}

	tok, _ = Tokenize("N 6 FLOOD_ON()")
	_, status, err = Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if status.Spindle&motion.CoolantOn == 0 {
		t.Fatalf("expected coolant bit set, got %v", status.Spindle)
	}

	tok, _ = Tokenize("N 7 STOP_SPINDLE_TURNING()")
	_, status, err = Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if status.Spindle&motion.SpindleOn != 0 {
		t.Fatalf("expected spindle off, got %v", status.Spindle)
	}
}

func TestTranslateSelectPlane(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 8 SELECT_PLANE(CANON_PLANE_XZ)")
	_, status, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}

	var p motion.Pose
	status.Plane.SetUV(&p, 5, 6)
	status.Plane.SetW(&p, 7)
	if p.X != 5 || p.Z != 6 || p.Y != 7 {
		t.Fatalf("XZ plane did not route coordinates correctly: %+v", p)
	}
}

func TestTranslateSelectPlaneRejectsUnknown(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 9 SELECT_PLANE(CANON_PLANE_WEIRD)")
	if _, _, err := Translate(tok, status); err == nil {
		t.Fatal("expected error for unknown plane")
	}
}

func TestTranslateProgramEndSetsBitAndMove(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 10 PROGRAM_END()")
	mv, status, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if mv == nil || mv.Kind != motion.Motionless {
		t.Fatalf("expected motionless move, got %+v", mv)
	}
	if status.Spindle&motion.ProgramEnd == 0 {
		t.Fatal("expected ProgramEnd bit set")
	}
}

func TestTranslateInformationalCommandsProduceNoMove(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 11 COMMENT(hello world)")
	mv, _, err := Translate(tok, status)
	if err != nil {
		t.Fatal(err)
	}
	if mv != nil {
		t.Fatalf("expected nil move for informational command, got %+v", mv)
	}
}

func TestTranslateUnknownCommandErrors(t *testing.T) {
	status := NewStatus()
	tok, _ := Tokenize("N 12 SOME_UNKNOWN_THING(1,2,3)")
	if _, _, err := Translate(tok, status); err == nil {
		t.Fatal("expected error for unrecognised command")
	}
}

func TestRoundIntHalfAwayFromZero(t *testing.T) {
	cases := map[float32]int{1.4: 1, 1.5: 2, -1.5: -2, 0: 0, 2.999: 3}
	for in, want := range cases {
		if got := roundInt(in); got != want {
			t.Errorf("roundInt(%v) = %d, want %d", in, got, want)
		}
	}
}
