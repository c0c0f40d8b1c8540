// Package engine implements the Interpreter: a threaded-dispatch executor
// over the CISC-lifted ir.Program, structured as a tight fetch/dispatch
// loop of indirect jumps through a handler table (spec §4.3).
package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/Urethramancer/bf68/ir"
)

// DefaultTapeSize is the minimum conforming tape size (spec §3).
const DefaultTapeSize = 30000

// ErrStepLimit is returned by RunLimited when a program does not halt
// within the requested instruction budget (the host-level timeout
// spec §5 says implementations MAY add).
var ErrStepLimit = errors.New("engine: instruction step limit reached")

// Engine holds the one interpreter instance's state: the loaded program,
// its tape, program counter, and data pointer (spec §4.3.1). CallStack and
// DataStack are unused by the core CISC opcode set; they exist only for
// the Brainforth extension's CALL/RETURN and PUSH/POP/SAVE/RESTORE
// (spec §6.2), wired in by the forth package.
type Engine struct {
	Program ir.Program
	Tape    []byte
	PC      int
	Loc     int
	Running bool

	In  io.Reader
	Out io.Writer

	CallStack []int
	DataStack []byte
}

// New creates an Engine with the default tape size.
func New(prog ir.Program, in io.Reader, out io.Writer) *Engine {
	// DefaultTapeSize is never below the minimum, so no error can occur.
	e, _ := NewWithTapeSize(prog, DefaultTapeSize, in, out)
	return e
}

// NewWithTapeSize creates an Engine with an explicitly sized tape. Sizes
// below DefaultTapeSize are rejected: spec §3 requires N >= 30000.
func NewWithTapeSize(prog ir.Program, tapeSize int, in io.Reader, out io.Writer) (*Engine, error) {
	if tapeSize < DefaultTapeSize {
		return nil, fmt.Errorf("engine: tape size %d below minimum %d", tapeSize, DefaultTapeSize)
	}
	return &Engine{
		Program: prog,
		Tape:    make([]byte, tapeSize),
		In:      in,
		Out:     out,
	}, nil
}

// Run executes the loaded program to HALT.
func (e *Engine) Run() (int, error) {
	return e.RunLimited(-1)
}

// RunLimited executes the loaded program to HALT, failing with
// ErrStepLimit if more than maxSteps instructions execute first. A
// negative maxSteps means unlimited.
func (e *Engine) RunLimited(maxSteps int) (int, error) {
	e.Running = true
	steps := 0
	for e.Running {
		if maxSteps >= 0 && steps >= maxSteps {
			return steps, ErrStepLimit
		}

		op, err := e.fetch()
		if err != nil {
			return steps, err
		}
		handler, ok := handlers[op]
		if !ok {
			return steps, fmt.Errorf("engine: no handler for opcode %s", op)
		}
		if err := handler(e); err != nil {
			return steps, fmt.Errorf("engine: opcode %s at pc %d: %w", op, e.PC-1, err)
		}
		steps++
	}
	return steps, nil
}

// fetch reads the opcode record at PC, advancing PC past it.
func (e *Engine) fetch() (ir.Op, error) {
	if e.PC < 0 || e.PC >= len(e.Program) {
		return 0, fmt.Errorf("engine: pc %d out of program bounds", e.PC)
	}
	rec := e.Program[e.PC]
	if rec.Kind != ir.KindOp {
		return 0, fmt.Errorf("engine: pc %d does not address an opcode record", e.PC)
	}
	e.PC++
	return rec.Op, nil
}

// fetchOperand reads a single-operand record at PC, advancing PC past it.
// Per spec §4.3.3, OPEN/CLOSE read their target unconditionally before
// deciding whether to branch, so this is always called even when the
// branch will not be taken.
func (e *Engine) fetchOperand() (int64, error) {
	if e.PC < 0 || e.PC >= len(e.Program) {
		return 0, fmt.Errorf("engine: missing operand at pc %d", e.PC)
	}
	rec := e.Program[e.PC]
	if rec.Kind != ir.KindOperand {
		return 0, fmt.Errorf("engine: pc %d does not address an operand record", e.PC)
	}
	e.PC++
	return rec.Operand, nil
}

// fetchDyad reads a dyad operand record at PC, advancing PC past it.
func (e *Engine) fetchDyad() (int32, int32, error) {
	if e.PC < 0 || e.PC >= len(e.Program) {
		return 0, 0, fmt.Errorf("engine: missing dyad operand at pc %d", e.PC)
	}
	rec := e.Program[e.PC]
	if rec.Kind != ir.KindDyad {
		return 0, 0, fmt.Errorf("engine: pc %d does not address a dyad record", e.PC)
	}
	e.PC++
	return rec.High, rec.Low, nil
}

// cell resolves a pointer into the tape at Loc+offset, per spec §3's
// "implementations MAY detect under/overflow of loc and fail fast".
func (e *Engine) cell(offset int) (*byte, error) {
	idx := e.Loc + offset
	if idx < 0 || idx >= len(e.Tape) {
		return nil, fmt.Errorf("engine: tape index %d out of bounds (0..%d)", idx, len(e.Tape)-1)
	}
	return &e.Tape[idx], nil
}

// move applies a pointer displacement and bounds-checks the result.
func (e *Engine) move(delta int) error {
	loc := e.Loc + delta
	if loc < 0 || loc >= len(e.Tape) {
		return fmt.Errorf("engine: data pointer moved out of bounds (0..%d): %d", len(e.Tape)-1, loc)
	}
	e.Loc = loc
	return nil
}
