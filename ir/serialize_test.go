package ir_test

import (
	"strings"
	"testing"

	"github.com/Urethramancer/bf68/ir"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := ir.Program{
		ir.OpRecord(ir.Incr),
		ir.OpRecord(ir.Add), ir.OperandRecord(5),
		ir.OpRecord(ir.XfrMultiple), ir.DyadRecord(2, -3),
		ir.OpRecord(ir.Open), ir.OperandRecord(9),
		ir.OpRecord(ir.Halt),
	}
	data, err := ir.Encode(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ir.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(prog) {
		t.Fatalf("round trip changed length: %d != %d", len(got), len(prog))
	}
	for i := range prog {
		if got[i] != prog[i] {
			t.Fatalf("record %d changed in round trip: %+v != %+v", i, got[i], prog[i])
		}
	}
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	_, err := ir.Decode([]byte(`[{"OpCode":"NOT_REAL"}]`))
	if err == nil {
		t.Fatalf("expected an error for an unknown opcode name")
	}
}

func TestDecodeRejectsEmptyRecord(t *testing.T) {
	_, err := ir.Decode([]byte(`[{}]`))
	if err == nil {
		t.Fatalf("expected an error for a record with no recognisable fields")
	}
}

func TestRefRecordRoundTrips(t *testing.T) {
	prog := ir.Program{
		ir.OpRecord(ir.Call), ir.RefRecord("helper"),
		ir.OpRecord(ir.Halt),
	}
	data, err := ir.Encode(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"Ref": "helper"`) {
		t.Fatalf("expected the wire form to carry a Ref field, got %s", data)
	}
	got, err := ir.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[1].Kind != ir.KindRef || got[1].Ref != "helper" {
		t.Fatalf("expected a decoded Ref record naming helper, got %+v", got[1])
	}
}

func TestEncodeOmitsDiscardFlagWhenFalse(t *testing.T) {
	data, err := ir.Encode(ir.Program{ir.OpRecord(ir.Right)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), "DiscardBeforeSetZero") {
		t.Fatalf("expected the discard flag to be omitted when false, got %s", data)
	}
}
