package engine

import (
	"io"

	"github.com/Urethramancer/bf68/ir"
)

// HandlerFunc executes one instruction. By the time it is called, PC has
// already advanced past the instruction's own opcode slot; the handler is
// responsible for reading any operand slots that follow, advancing PC
// further before returning (spec §4.3.2).
type HandlerFunc func(*Engine) error

// handlers is the threaded-dispatch table: each opcode's handler is
// resolved once per fetch, mirroring the function-pointer-table style
// spec §9 names as a portable alternative to address-of-label dispatch.
var handlers = map[ir.Op]HandlerFunc{
	ir.Incr:        opIncr,
	ir.Decr:        opDecr,
	ir.Add:         opAdd,
	ir.AddOffset:   opAddOffset,
	ir.XfrMultiple: opXfrMultiple,
	ir.SetZero:     opSetZero,
	ir.Left:        opLeft,
	ir.Right:       opRight,
	ir.Move:        opMove,
	ir.SeekLeft:    opSeekLeft,
	ir.SeekRight:   opSeekRight,
	ir.Open:        opOpen,
	ir.Close:       opClose,
	ir.Get:         opGet,
	ir.Put:         opPut,
	ir.Halt:        opHalt,
}

// RegisterHandler installs (or overrides) the handler for an opcode. It
// exists so the Brainforth extension (the forth package) can add its
// PUSH/POP/CALL/RETURN/SAVE/RESTORE opcodes without this package knowing
// about them.
func RegisterHandler(op ir.Op, fn HandlerFunc) {
	handlers[op] = fn
}

func opIncr(e *Engine) error {
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	*c++
	return nil
}

func opDecr(e *Engine) error {
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	*c--
	return nil
}

func opAdd(e *Engine) error {
	n, err := e.fetchOperand()
	if err != nil {
		return err
	}
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	*c += byte(n)
	return nil
}

func opAddOffset(e *Engine) error {
	offset, by, err := e.fetchDyad()
	if err != nil {
		return err
	}
	c, err := e.cell(int(offset))
	if err != nil {
		return err
	}
	*c += byte(by)
	return nil
}

// opXfrMultiple performs the multiply-and-transfer idiom: the product is
// computed at 64-bit width before truncating mod 256, per spec §4.3.3's
// requirement to avoid overflow in the multiplication itself.
func opXfrMultiple(e *Engine) error {
	offset, by, err := e.fetchDyad()
	if err != nil {
		return err
	}
	src, err := e.cell(0)
	if err != nil {
		return err
	}
	dst, err := e.cell(int(offset))
	if err != nil {
		return err
	}
	product := int64(*src) * int64(by)
	*dst += byte(product)
	*src = 0
	return nil
}

func opSetZero(e *Engine) error {
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	*c = 0
	return nil
}

func opLeft(e *Engine) error {
	return e.move(-1)
}

func opRight(e *Engine) error {
	return e.move(1)
}

func opMove(e *Engine) error {
	n, err := e.fetchOperand()
	if err != nil {
		return err
	}
	return e.move(int(n))
}

func opSeekLeft(e *Engine) error {
	for {
		c, err := e.cell(0)
		if err != nil {
			return err
		}
		if *c == 0 {
			return nil
		}
		if err := e.move(-1); err != nil {
			return err
		}
	}
}

func opSeekRight(e *Engine) error {
	for {
		c, err := e.cell(0)
		if err != nil {
			return err
		}
		if *c == 0 {
			return nil
		}
		if err := e.move(1); err != nil {
			return err
		}
	}
}

// opOpen reads its target unconditionally, then branches iff the current
// cell is zero (spec §4.3.3).
func opOpen(e *Engine) error {
	target, err := e.fetchOperand()
	if err != nil {
		return err
	}
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	if *c == 0 {
		e.PC = int(target)
	}
	return nil
}

// opClose is opOpen's mirror: branches iff the current cell is nonzero.
func opClose(e *Engine) error {
	target, err := e.fetchOperand()
	if err != nil {
		return err
	}
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	if *c != 0 {
		e.PC = int(target)
	}
	return nil
}

// opGet reads one byte from the input stream. End-of-input is not an
// error: the cell is left unchanged and execution proceeds (spec §4.3.3,
// §7 item 5).
func opGet(e *Engine) error {
	var buf [1]byte
	_, err := io.ReadFull(e.In, buf[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		return err
	}
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	*c = buf[0]
	return nil
}

// opPut emits the raw byte at the current cell, not a text encoding of
// its integer value (spec §4.3.3).
func opPut(e *Engine) error {
	c, err := e.cell(0)
	if err != nil {
		return err
	}
	_, err = e.Out.Write([]byte{*c})
	return err
}

func opHalt(e *Engine) error {
	e.Running = false
	return nil
}
