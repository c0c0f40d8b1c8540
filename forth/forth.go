// Package forth wires in the Brainforth extension: a data stack and
// named-procedure call/return layered on top of the core engine, the way
// the engine's own RegisterHandler hook was designed to allow (spec
// §6.2). Register gives PUSH/POP/CALL/RETURN/SAVE/RESTORE working
// semantics over the same tape and engine.Engine the core opcodes already
// operate on, without a second parser or a second IR; Link (see link.go)
// performs the spec §9 two-phase load that turns a named ProcSet into the
// single flat, address-resolved ir.Program those handlers run.
package forth

import (
	"errors"
	"fmt"

	"github.com/Urethramancer/bf68/engine"
	"github.com/Urethramancer/bf68/ir"
)

// ErrDataStackUnderflow is returned by POP and RESTORE against an empty
// data stack.
var ErrDataStackUnderflow = errors.New("forth: data stack underflow")

// ErrCallStackUnderflow is returned by RETURN with no matching CALL.
var ErrCallStackUnderflow = errors.New("forth: call stack underflow")

// Register installs the Brainforth opcode handlers into the shared engine
// dispatch table. It is a package-level side-effecting call, mirroring how
// the teacher's cpu package builds its own dispatch table once at init
// time rather than per-Engine.
func Register() {
	engine.RegisterHandler(ir.Push, opPush)
	engine.RegisterHandler(ir.Pop, opPop)
	engine.RegisterHandler(ir.Call, opCall)
	engine.RegisterHandler(ir.Return, opReturn)
	engine.RegisterHandler(ir.Save, opSave)
	engine.RegisterHandler(ir.Restore, opRestore)
}

// opPush copies the current cell onto the data stack, leaving the tape
// unchanged.
func opPush(e *engine.Engine) error {
	c, err := cell(e, 0)
	if err != nil {
		return err
	}
	e.DataStack = append(e.DataStack, *c)
	return nil
}

// opPop moves the top of the data stack into the current cell.
func opPop(e *engine.Engine) error {
	if len(e.DataStack) == 0 {
		return ErrDataStackUnderflow
	}
	top := len(e.DataStack) - 1
	c, err := cell(e, 0)
	if err != nil {
		return err
	}
	*c = e.DataStack[top]
	e.DataStack = e.DataStack[:top]
	return nil
}

// opCall reads its single operand (the procedure's entry slot) and jumps
// there, pushing the resume address (the slot immediately after CALL's own
// operand) onto the call stack.
func opCall(e *engine.Engine) error {
	target, err := fetchOperand(e)
	if err != nil {
		return err
	}
	e.CallStack = append(e.CallStack, e.PC)
	e.PC = int(target)
	return nil
}

// opReturn pops the call stack and resumes there.
func opReturn(e *engine.Engine) error {
	if len(e.CallStack) == 0 {
		return ErrCallStackUnderflow
	}
	top := len(e.CallStack) - 1
	e.PC = e.CallStack[top]
	e.CallStack = e.CallStack[:top]
	return nil
}

// opSave pushes the current data pointer so a procedure can restore the
// caller's tape position before returning.
func opSave(e *engine.Engine) error {
	if e.Loc < 0 || e.Loc > 255 {
		return fmt.Errorf("forth: SAVE: data pointer %d out of byte range", e.Loc)
	}
	e.DataStack = append(e.DataStack, byte(e.Loc))
	return nil
}

// opRestore is SAVE's mirror, popping a previously saved data pointer.
func opRestore(e *engine.Engine) error {
	if len(e.DataStack) == 0 {
		return ErrDataStackUnderflow
	}
	top := len(e.DataStack) - 1
	e.Loc = int(e.DataStack[top])
	e.DataStack = e.DataStack[:top]
	return nil
}

// cell and fetchOperand duplicate the engine's unexported helpers of the
// same name: RegisterHandler lets forth supply HandlerFunc values, but a
// HandlerFunc only receives the *Engine, so it must resolve operands the
// same way the core handlers do using only the exported fields.
func cell(e *engine.Engine, offset int) (*byte, error) {
	idx := e.Loc + offset
	if idx < 0 || idx >= len(e.Tape) {
		return nil, fmt.Errorf("forth: tape index %d out of bounds (0..%d)", idx, len(e.Tape)-1)
	}
	return &e.Tape[idx], nil
}

func fetchOperand(e *engine.Engine) (int64, error) {
	if e.PC < 0 || e.PC >= len(e.Program) {
		return 0, fmt.Errorf("forth: missing operand at pc %d", e.PC)
	}
	rec := e.Program[e.PC]
	if rec.Kind != ir.KindOperand {
		return 0, fmt.Errorf("forth: pc %d does not address an operand record", e.PC)
	}
	e.PC++
	return rec.Operand, nil
}
