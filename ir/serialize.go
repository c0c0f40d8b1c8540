package ir

import (
	"encoding/json"
	"fmt"
)

// wireRecord mirrors the shapes described in spec §6.1, plus the
// Brainforth-extension "Ref" shape from spec §6.2. A compliant
// deserializer ignores unknown fields, which encoding/json already does
// for us on Unmarshal.
type wireRecord struct {
	OpCode               string `json:"OpCode,omitempty"`
	DiscardBeforeSetZero bool   `json:"DiscardBeforeSetZero,omitempty"`
	Operand              *int64 `json:"Operand,omitempty"`
	High                 *int32 `json:"High,omitempty"`
	Low                  *int32 `json:"Low,omitempty"`
	Ref                  string `json:"Ref,omitempty"`
}

// MarshalJSON renders a Record as one of the wire shapes: the three of
// spec §6.1, or the Brainforth "Ref" shape.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindOp:
		w := wireRecord{OpCode: r.Op.String()}
		if r.DiscardBeforeSetZero {
			w.DiscardBeforeSetZero = true
		}
		return json.Marshal(w)
	case KindOperand:
		n := r.Operand
		return json.Marshal(wireRecord{Operand: &n})
	case KindDyad:
		h, l := r.High, r.Low
		return json.Marshal(wireRecord{High: &h, Low: &l})
	case KindRef:
		return json.Marshal(wireRecord{Ref: r.Ref})
	default:
		return nil, fmt.Errorf("ir: record has unknown kind %d", r.Kind)
	}
}

// UnmarshalJSON recognises which of the four wire shapes a record used
// and reconstructs the typed Record. A record that names an unrecognised
// opcode is a load error (spec §7, "malformed IR... unknown opcode name").
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.OpCode != "":
		op, ok := ParseOp(w.OpCode)
		if !ok {
			return fmt.Errorf("ir: unknown opcode name %q", w.OpCode)
		}
		*r = Record{Kind: KindOp, Op: op, DiscardBeforeSetZero: w.DiscardBeforeSetZero}
	case w.Operand != nil:
		*r = Record{Kind: KindOperand, Operand: *w.Operand}
	case w.High != nil || w.Low != nil:
		var h, l int32
		if w.High != nil {
			h = *w.High
		}
		if w.Low != nil {
			l = *w.Low
		}
		*r = Record{Kind: KindDyad, High: h, Low: l}
	case w.Ref != "":
		*r = Record{Kind: KindRef, Ref: w.Ref}
	default:
		return fmt.Errorf("ir: record has none of OpCode/Operand/High/Low/Ref")
	}
	return nil
}

// Encode serializes a Program as the flat JSON array described in spec §6.1.
func Encode(p Program) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Decode parses a Program from its JSON array form.
func Decode(data []byte) (Program, error) {
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("ir: decode: %w", err)
	}
	return p, nil
}
