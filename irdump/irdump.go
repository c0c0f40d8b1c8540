// Package irdump renders an ir.Program as a human-readable listing, one
// line per instruction, with operand records folded onto their opcode's
// line the way an assembly disassembly reads.
package irdump

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/bf68/ir"
)

// Dump formats prog as a text listing. Each line starts with the
// instruction's slot index (its address, for OPEN/CLOSE branch targets to
// be cross-referenced against), followed by the mnemonic and any operand.
func Dump(prog ir.Program) (string, error) {
	var out strings.Builder
	for i := 0; i < len(prog); i++ {
		rec := prog[i]
		if rec.Kind != ir.KindOp {
			return "", fmt.Errorf("irdump: slot %d is not an opcode record", i)
		}

		fmt.Fprintf(&out, "%04d  %-12s", i, rec.Op)

		discard := ir.DiscardBeforeSetZero(rec.Op) && rec.DiscardBeforeSetZero
		slots := operandSlots(rec.Op)
		if slots == 0 {
			if discard {
				out.WriteString(" ; discard-before-set-zero")
			}
			out.WriteByte('\n')
			continue
		}
		if i+1 >= len(prog) {
			return "", fmt.Errorf("irdump: slot %d (%s) missing its operand", i, rec.Op)
		}
		operand := prog[i+1]
		switch operand.Kind {
		case ir.KindOperand:
			if rec.Op == ir.Open || rec.Op == ir.Close {
				fmt.Fprintf(&out, "-> %04d", operand.Operand)
			} else {
				fmt.Fprintf(&out, "%d", operand.Operand)
			}
		case ir.KindDyad:
			fmt.Fprintf(&out, "offset=%d by=%d", operand.High, operand.Low)
		default:
			return "", fmt.Errorf("irdump: slot %d (%s) operand has wrong kind", i, rec.Op)
		}
		if discard {
			out.WriteString(" ; discard-before-set-zero")
		}
		out.WriteByte('\n')
		i++
	}
	return out.String(), nil
}

// operandSlots mirrors ir.operandSlots; it is not exported from that
// package because validation and rendering are the only two callers and
// duplicating the tiny switch is cheaper than exporting internals.
func operandSlots(op ir.Op) int {
	switch op {
	case ir.Add, ir.Move, ir.Open, ir.Close, ir.Call, ir.AddOffset, ir.XfrMultiple:
		return 1
	default:
		return 0
	}
}
