// Package lifter implements the CodePlanter: the peephole-optimizing
// translator from Brainfuck source characters (via the scanner package) to
// the CISC-lifted ir.Program the engine executes (spec §4.2).
package lifter

import (
	"fmt"

	"github.com/Urethramancer/bf68/ir"
	"github.com/Urethramancer/bf68/scanner"
)

// Lifter drives a scanner.Scanner and emits an ir.Program, tracking the
// single piece of cross-instruction state the optimizer depends on:
// loc_is_zero, whether the current tape cell is provably zero at the
// point about to be emitted.
type Lifter struct {
	sc    *scanner.Scanner
	flags Flags

	prog      ir.Program
	locIsZero bool
	openStack []int
}

// New creates a Lifter reading from sc under the given optimizer flags.
// loc_is_zero starts true: the tape begins entirely zeroed.
func New(sc *scanner.Scanner, flags Flags) *Lifter {
	return &Lifter{sc: sc, flags: flags, locIsZero: true}
}

// Lift consumes the entire source stream and returns the finished IR
// program, terminated by a single HALT record.
func (l *Lifter) Lift() (ir.Program, error) {
	for {
		ch, ok := l.sc.Pop()
		if !ok {
			break
		}
		if err := l.step(ch); err != nil {
			return nil, err
		}
	}
	if len(l.openStack) != 0 {
		return nil, fmt.Errorf("lift: %d unmatched '['", len(l.openStack))
	}
	l.prog = append(l.prog, ir.OpRecord(ir.Halt))
	return l.prog, nil
}

// step dispatches a single popped source character (spec §4.2.4).
func (l *Lifter) step(ch byte) error {
	switch ch {
	case '+':
		l.emitAdd(l.scanAdd(1))
	case '-':
		l.emitAdd(l.scanAdd(-1))
	case '>':
		l.plantMoveAddMove(l.scanMoveAddMove(1))
	case '<':
		l.plantMoveAddMove(l.scanMoveAddMove(-1))
	case '.':
		l.emit(ir.Put)
	case ',':
		l.emit(ir.Get)
	case '[':
		return l.handleOpen()
	case ']':
		return l.handleClose()
	}
	return nil
}

// emit appends a bare opcode record (no operand) and updates loc_is_zero
// from the opcode's advertised post-state (spec §4.2.6).
func (l *Lifter) emit(op ir.Op) {
	l.prog = append(l.prog, ir.OpRecord(op))
	l.locIsZero = ir.PostZero(op)
}

// emitWithOperand appends an opcode and its single operand slot.
func (l *Lifter) emitWithOperand(op ir.Op, n int64) {
	l.prog = append(l.prog, ir.OpRecord(op), ir.OperandRecord(n))
	l.locIsZero = ir.PostZero(op)
}

// emitWithDyad appends an opcode and its dyad operand slot.
func (l *Lifter) emitWithDyad(op ir.Op, high, low int32) {
	l.prog = append(l.prog, ir.OpRecord(op), ir.DyadRecord(high, low))
	l.locIsZero = ir.PostZero(op)
}

// emitMove plants a pointer displacement, collapsing to LEFT/RIGHT at
// unit magnitude and to nothing at zero (spec §4.2.3 item 1).
func (l *Lifter) emitMove(n int) {
	switch n {
	case 0:
		return
	case 1:
		l.emit(ir.Right)
	case -1:
		l.emit(ir.Left)
	default:
		l.emitWithOperand(ir.Move, int64(n))
	}
}

// emitAdd plants a cell delta, collapsing to INCR/DECR at unit magnitude
// and to nothing at zero. This is spec §4.2.4's plant_add.
func (l *Lifter) emitAdd(n int) {
	switch n {
	case 0:
		return
	case 1:
		l.emit(ir.Incr)
	case -1:
		l.emit(ir.Decr)
	default:
		l.emitWithOperand(ir.Add, int64(n))
	}
}

// emitAddOffset plants an add-at-a-displaced-cell. Every call site has
// already established offset != 0 via the mam shape that led to it
// (spec §4.2.3 item 2).
func (l *Lifter) emitAddOffset(offset, by int) {
	l.emitWithDyad(ir.AddOffset, int32(offset), int32(by))
}

// plantMoveAddMove is the recursive (converted to iterative, per spec §9's
// stack-exhaustion note) normaliser that lays down a scanned mam window,
// never emitting a zero-valued micro-instruction and collapsing pure-move
// chains (spec §4.2.3).
func (l *Lifter) plantMoveAddMove(m mam) {
	for {
		if m.by == 0 {
			if m.rhs == 0 {
				l.emitMove(m.lhs)
				return
			}
			m = l.scanMoveAddMove(m.lhs + m.rhs)
			continue
		}

		if m.lhs != 0 && m.rhs != 0 && sign(m.lhs) != sign(m.rhs) {
			al, ar := abs(m.lhs), abs(m.rhs)
			switch {
			case al == ar:
				l.emitAddOffset(m.lhs, m.by)
				return
			case al > ar:
				l.emitMove(sign(m.lhs) * (al - ar))
				l.emitAddOffset(sign(m.lhs)*ar, m.by)
				return
			default: // al < ar
				l.emitAddOffset(m.lhs, m.by)
				m = l.scanMoveAddMove(sign(m.rhs) * (ar - al))
				continue
			}
		}

		l.emitMove(m.lhs)
		l.emitAdd(m.by)
		m = l.scanMoveAddMove(m.rhs)
	}
}

// handleOpen is the heart of the lifter (spec §4.2.4, the '[' case).
func (l *Lifter) handleOpen() error {
	if l.locIsZero && l.flags.DeadCode {
		return l.skipDeadLoop()
	}

	m := l.scanMoveAddMove(0)
	switch {
	case (m.matches(0, 1, 0) || m.matches(0, -1, 0)) && l.flags.PruneIfLocIsZero && l.sc.TryConsume(']'):
		if l.flags.Superfluous {
			l.unplantBeforeSetZero()
		}
		l.emit(ir.SetZero)
	case m.matches(1, 0, 0) && l.flags.SeekZero && l.sc.TryConsume(']'):
		l.emit(ir.SeekRight)
	case m.matches(-1, 0, 0) && l.flags.SeekZero && l.sc.TryConsume(']'):
		l.emit(ir.SeekLeft)
	case m.nonzeroBalanced() && l.flags.XfrMultiple && l.sc.TryConsumeSequence("-]"):
		l.emitWithDyad(ir.XfrMultiple, int32(m.lhs), int32(m.by))
	case m.lhs == 0 && m.by == -1 && l.flags.XfrMultiple:
		l.planMultiplyTransferDecrementFirst(m)
	default:
		l.emitOpenPlaceholder()
		l.plantMoveAddMove(m)
	}
	return nil
}

// planMultiplyTransferDecrementFirst recognises the "[->++<]"-style
// multiply-transfer idiom, where the cell's own decrement is the first
// thing in the loop body rather than the last (the nonzeroBalanced case
// above already covers the decrement-last "[>++<-]" shape). head is the
// window already scanned at the loop's start: a lone leading '-' shows up
// there as lhs=0, by=-1, with whatever immediately followed it captured
// as head.rhs - exactly the seed the next window continues from.
func (l *Lifter) planMultiplyTransferDecrementFirst(head mam) {
	mim := l.scanMoveAddMove(head.rhs)
	if mim.nonzeroBalanced() && l.sc.TryConsume(']') {
		l.emitWithDyad(ir.XfrMultiple, int32(mim.lhs), int32(mim.by))
		return
	}
	l.emitOpenPlaceholder()
	l.emitAdd(head.by)
	l.plantMoveAddMove(mim)
}

// skipDeadLoop consumes an entire provably-unreachable loop body, tracking
// bracket nesting, and emits nothing for it.
func (l *Lifter) skipDeadLoop() error {
	depth := 1
	for depth > 0 {
		ch, ok := l.sc.Pop()
		if !ok {
			return fmt.Errorf("lift: unmatched '[' in dead code")
		}
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
		}
	}
	return nil
}

// emitOpenPlaceholder emits an OPEN opcode with a placeholder target and
// pushes the index of that operand slot onto the open-stack for later
// backpatching (spec §4.2.7).
func (l *Lifter) emitOpenPlaceholder() {
	l.prog = append(l.prog, ir.OpRecord(ir.Open))
	l.locIsZero = ir.PostZero(ir.Open)
	l.openStack = append(l.openStack, len(l.prog))
	l.prog = append(l.prog, ir.OperandRecord(0))
}

// handleClose emits CLOSE and backpatches the matching OPEN's target
// (spec §4.2.7).
func (l *Lifter) handleClose() error {
	if len(l.openStack) == 0 {
		return fmt.Errorf("lift: unmatched ']'")
	}

	l.prog = append(l.prog, ir.OpRecord(ir.Close))
	end := len(l.prog)
	start := l.openStack[len(l.openStack)-1]
	l.openStack = l.openStack[:len(l.openStack)-1]

	l.prog[start].Operand = int64(end + 1)
	l.prog = append(l.prog, ir.OperandRecord(int64(start+1)))
	l.locIsZero = ir.PostZero(ir.Close)
	return nil
}

// unplantBeforeSetZero removes trailing records from the emit buffer
// while their opcode carries the discard-before-set-zero flag, per
// spec §4.2.5. It never crosses a pointer-moving or loop-marker record,
// since only INCR/DECR/ADD carry that flag.
func (l *Lifter) unplantBeforeSetZero() {
	for len(l.prog) > 0 {
		idx := len(l.prog) - 1
		if l.prog[idx].Kind != ir.KindOp {
			idx--
		}
		if idx < 0 || l.prog[idx].Kind != ir.KindOp || !l.prog[idx].DiscardBeforeSetZero {
			return
		}
		l.prog = l.prog[:idx]
	}
}
