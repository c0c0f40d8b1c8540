package tests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Urethramancer/bf68/engine"
	"github.com/Urethramancer/bf68/ir"
	"github.com/Urethramancer/bf68/lifter"
	"github.com/Urethramancer/bf68/scanner"
)

// compile runs the full scanner -> lifter pipeline and checks the result
// validates, the way bfc does before writing it out.
func compile(t *testing.T, src string, flags lifter.Flags) ir.Program {
	t.Helper()
	sc := scanner.New(strings.NewReader(src))
	prog, err := lifter.New(sc, flags).Lift()
	if err != nil {
		t.Fatalf("[%q] lift: %v", src, err)
	}
	if err := ir.Validate(prog); err != nil {
		t.Fatalf("[%q] lifted program failed validation: %v", src, err)
	}
	return prog
}

// execute runs a compiled program against stdin and returns stdout.
func execute(t *testing.T, prog ir.Program, stdin string) string {
	t.Helper()
	var out bytes.Buffer
	e := engine.New(prog, strings.NewReader(stdin), &out)
	if _, err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

// TestHelloWorld covers spec §8 scenario 1: literal bytes built on the
// tape and printed.
func TestHelloWorld(t *testing.T) {
	const src = "" +
		"++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."
	prog := compile(t, src, lifter.AllFlags())
	got := execute(t, prog, "")
	if got != "Hello World!\n" {
		t.Fatalf("expected classic Hello World output, got %q", got)
	}
}

// TestZeroingIdiomEndToEnd covers spec §8 scenario 2.
func TestZeroingIdiomEndToEnd(t *testing.T) {
	prog := compile(t, "++++++++[-]", lifter.AllFlags())
	var foundSetZero bool
	for i, r := range prog {
		if r.Kind == ir.KindOp && r.Op == ir.SetZero {
			foundSetZero = true
			if i > 0 && prog[i-1].Kind == ir.KindOp && (prog[i-1].Op == ir.Incr || prog[i-1].Op == ir.Add) {
				t.Fatalf("expected no INCR/ADD immediately before SET_ZERO, found %s", prog[i-1].Op)
			}
		}
	}
	if !foundSetZero {
		t.Fatalf("expected a SET_ZERO record in %v", prog)
	}

	e := engine.New(prog, strings.NewReader(""), &bytes.Buffer{})
	if _, err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Tape[0] != 0 {
		t.Fatalf("expected cell 0 to be zero, got %d", e.Tape[0])
	}
}

// TestSeekRightEndToEnd covers spec §8 scenario 3: a pre-seeded tape with
// nonzero cells 0..3 and a zero at 4.
func TestSeekRightEndToEnd(t *testing.T) {
	prog := compile(t, "[>]", lifter.Flags{SeekZero: true})
	var out bytes.Buffer
	e := engine.New(prog, strings.NewReader(""), &out)
	for i := 0; i < 4; i++ {
		e.Tape[i] = 1
	}
	if _, err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Loc != 4 {
		t.Fatalf("expected data pointer at 4 after SEEK_RIGHT, got %d", e.Loc)
	}
}

// TestMultiplyTransferEndToEnd covers spec §8 scenario 4.
func TestMultiplyTransferEndToEnd(t *testing.T) {
	prog := compile(t, "[->++<]", lifter.Flags{XfrMultiple: true})
	var out bytes.Buffer
	e := engine.New(prog, strings.NewReader(""), &out)
	e.Tape[0] = 5
	if _, err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Tape[0] != 0 {
		t.Fatalf("expected source cell zeroed, got %d", e.Tape[0])
	}
	if e.Tape[1] != 10 {
		t.Fatalf("expected cell 1 = 10, got %d", e.Tape[1])
	}
}

// TestDeadCodeRemovalEndToEnd covers spec §8 scenario 5.
func TestDeadCodeRemovalEndToEnd(t *testing.T) {
	prog := compile(t, "[ this entire loop is comment ]+", lifter.AllFlags())
	var ops []ir.Op
	for _, r := range prog {
		if r.Kind == ir.KindOp {
			ops = append(ops, r.Op)
		}
	}
	want := []ir.Op{ir.Incr, ir.Halt}
	if len(ops) != len(want) || ops[0] != want[0] || ops[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, ops)
	}
}

// TestWraparoundEndToEnd covers spec §8 scenario 6.
func TestWraparoundEndToEnd(t *testing.T) {
	prog := compile(t, "-.", lifter.NoFlags())
	got := execute(t, prog, "")
	if len(got) != 1 || got[0] != 0xFF {
		t.Fatalf("expected a single 0xFF byte, got %q", got)
	}
}

// TestOptimiserFlagsAreBehaviourPreserving covers the §8 round-trip law:
// lifting the same source under --none and --all must execute identically.
func TestOptimiserFlagsAreBehaviourPreserving(t *testing.T) {
	sources := []string{
		"++++++++[-].",
		"+++[->++<]>.<.",
		"[ dead ]+++.",
		"++><+-.,",
	}
	for _, src := range sources {
		none := compile(t, src, lifter.NoFlags())
		all := compile(t, src, lifter.AllFlags())
		gotNone := execute(t, none, "A")
		gotAll := execute(t, all, "A")
		if gotNone != gotAll {
			t.Fatalf("[%q] --none output %q != --all output %q", src, gotNone, gotAll)
		}
	}
}

// TestJSONRoundTripExecutesIdentically covers the §8 serialization
// round-trip law.
func TestJSONRoundTripExecutesIdentically(t *testing.T) {
	prog := compile(t, "++++[->++<]>.<.", lifter.AllFlags())
	data, err := ir.Encode(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ir.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := execute(t, prog, "")
	got := execute(t, decoded, "")
	if want != got {
		t.Fatalf("round-tripped IR executed differently: %q != %q", got, want)
	}
}
