package ir

// Kind distinguishes the record shapes the instruction stream is built
// from: an opcode slot, a single signed-integer operand slot, a two-field
// dyad operand slot, or (Brainforth extension only) an unresolved named
// procedure reference.
type Kind byte

const (
	KindOp Kind = iota
	KindOperand
	KindDyad
	// KindRef is a Brainforth-extension-only slot (spec §6.2): a named
	// procedure reference awaiting resolution to an absolute address.
	// It never appears in a program that has passed through Validate;
	// a linker (forth.Link) must resolve every KindRef to a KindOperand
	// record first.
	KindRef
)

// Record is one slot in the flat, indexable IR stream. Every slot -
// opcode or operand - occupies exactly one Record regardless of Kind; the
// program counter advances one slot at a time (spec §3, "Instruction
// stream layout").
type Record struct {
	Kind Kind
	Op   Op

	// Operand holds the payload for KindOperand records: a MOVE/ADD
	// displacement, or an absolute OPEN/CLOSE/CALL target.
	Operand int64

	// High and Low hold the two fields of a KindDyad record: (offset, by)
	// for ADD_OFFSET and XFR_MULTIPLE.
	High int32
	Low  int32

	// DiscardBeforeSetZero is the serialization hint described in spec
	// §6.1; it has no runtime effect. OpRecord sets it only for
	// INCR/DECR/ADD; UnmarshalJSON copies it from the wire as given.
	DiscardBeforeSetZero bool

	// Ref holds the payload for KindRef records: the name of the
	// procedure a CALL/Ref slot names, resolved to an absolute address
	// by forth.Link before the program can run (spec §6.2, §9).
	Ref string
}

// OpRecord builds an opcode slot, setting the DiscardBeforeSetZero hint
// from the opcode's own table entry.
func OpRecord(op Op) Record {
	return Record{Kind: KindOp, Op: op, DiscardBeforeSetZero: DiscardBeforeSetZero(op)}
}

// OperandRecord builds a single signed-integer operand slot.
func OperandRecord(n int64) Record {
	return Record{Kind: KindOperand, Operand: n}
}

// DyadRecord builds a two-field operand slot.
func DyadRecord(high, low int32) Record {
	return Record{Kind: KindDyad, High: high, Low: low}
}

// RefRecord builds an unresolved procedure-reference slot, the Brainforth
// extension's "Ref" wire record (spec §6.2). A linker must replace it
// with an OperandRecord of the procedure's absolute address before the
// surrounding program can be validated or executed.
func RefRecord(name string) Record {
	return Record{Kind: KindRef, Ref: name}
}

// Program is the full flat instruction stream produced by the lifter and
// consumed by the engine.
type Program []Record

// postZero tracks, per opcode, whether the cell at loc is provably zero
// immediately after the instruction runs (spec §4.2.6). This table is
// authoritative; the lifter updates loc_is_zero from it after every
// opcode it emits, and reads that fact only when deciding the two
// optimisations that depend on it.
var postZero = map[Op]bool{
	SetZero:   true,
	SeekLeft:  true,
	SeekRight: true,
	Close:     true,
}

// PostZero reports the loc_is_zero fact that holds immediately after an
// instruction of this opcode executes. Opcodes absent from the table
// leave the fact false, matching the default in spec §4.2.6.
func PostZero(op Op) bool {
	return postZero[op]
}
