package ir_test

import (
	"testing"

	"github.com/Urethramancer/bf68/ir"
)

func TestOpRecordSetsDiscardFlagAutomatically(t *testing.T) {
	if !ir.OpRecord(ir.Incr).DiscardBeforeSetZero {
		t.Fatalf("expected INCR record to carry the discard flag")
	}
	if ir.OpRecord(ir.Right).DiscardBeforeSetZero {
		t.Fatalf("did not expect RIGHT record to carry the discard flag")
	}
}

func TestPostZero(t *testing.T) {
	for _, op := range []ir.Op{ir.SetZero, ir.SeekLeft, ir.SeekRight, ir.Close} {
		if !ir.PostZero(op) {
			t.Fatalf("expected %s to leave loc_is_zero true", op)
		}
	}
	// XFR_MULTIPLE zeroes the source cell at runtime, but the lifter's
	// static fact treats its post-state as unknown, per the literal wording
	// of the loc_is_zero rules this table encodes.
	for _, op := range []ir.Op{ir.Incr, ir.Add, ir.Right, ir.Open, ir.XfrMultiple} {
		if ir.PostZero(op) {
			t.Fatalf("did not expect %s to leave loc_is_zero true", op)
		}
	}
}

func TestOperandAndDyadRecordConstructors(t *testing.T) {
	op := ir.OperandRecord(42)
	if op.Kind != ir.KindOperand || op.Operand != 42 {
		t.Fatalf("unexpected OperandRecord: %+v", op)
	}
	dy := ir.DyadRecord(3, -7)
	if dy.Kind != ir.KindDyad || dy.High != 3 || dy.Low != -7 {
		t.Fatalf("unexpected DyadRecord: %+v", dy)
	}
}
