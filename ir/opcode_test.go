package ir_test

import (
	"testing"

	"github.com/Urethramancer/bf68/ir"
)

func TestOpStringRoundTripsThroughParseOp(t *testing.T) {
	ops := []ir.Op{
		ir.Incr, ir.Decr, ir.Add, ir.AddOffset, ir.XfrMultiple,
		ir.SetZero, ir.Left, ir.Right, ir.Move, ir.SeekLeft, ir.SeekRight,
		ir.Open, ir.Close, ir.Get, ir.Put, ir.Halt,
		ir.Push, ir.Pop, ir.Call, ir.Return, ir.Save, ir.Restore,
	}
	for _, op := range ops {
		name := op.String()
		if name == "UNKNOWN" {
			t.Fatalf("opcode %d has no name", op)
		}
		got, ok := ir.ParseOp(name)
		if !ok {
			t.Fatalf("ParseOp(%q) failed to resolve back", name)
		}
		if got != op {
			t.Fatalf("ParseOp(%q) = %d, want %d", name, got, op)
		}
	}
}

func TestParseOpRejectsUnknownName(t *testing.T) {
	if _, ok := ir.ParseOp("NOT_A_REAL_OPCODE"); ok {
		t.Fatalf("expected ParseOp to reject an unknown name")
	}
}

func TestDiscardBeforeSetZero(t *testing.T) {
	for _, op := range []ir.Op{ir.Incr, ir.Decr, ir.Add} {
		if !ir.DiscardBeforeSetZero(op) {
			t.Fatalf("expected %s to be discardable before SET_ZERO", op)
		}
	}
	for _, op := range []ir.Op{ir.Move, ir.Open, ir.Close, ir.Get, ir.Put} {
		if ir.DiscardBeforeSetZero(op) {
			t.Fatalf("did not expect %s to be discardable before SET_ZERO", op)
		}
	}
}
