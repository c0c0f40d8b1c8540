package forth

import (
	"fmt"
	"sort"

	"github.com/Urethramancer/bf68/ir"
)

// ProcSet is the Brainforth IR file shape (spec §6.2): a set of named
// procedure bodies, each its own flat instruction stream, not yet
// concatenated into one addressable program. This is what a Brainforth
// compiler would emit in place of the core dialect's single ir.Program
// array.
type ProcSet map[string]ir.Program

// Procedures maps a procedure name to its absolute entry address in the
// single flat program Link produces. It is the table Link builds during
// its first pass and consults during its second.
type Procedures map[string]int

// entryProcedure is the name execution starts at (spec §6.2, "Execution
// starts at the procedure named main").
const entryProcedure = "main"

// Link performs spec §9's two-phase load for the Brainforth extension:
// "first, allocate every procedure's sequence (so addresses are stable),
// then walk the records resolving Ref entries to absolute references."
//
// Phase one concatenates every procedure's records into a single flat
// ir.Program, in a stable order - entryProcedure first, then every other
// name sorted lexicographically - so each procedure's entry address is
// fixed before any reference into it is resolved. Phase two walks the
// concatenated program and replaces every ir.KindRef record with the
// ir.OperandRecord of the address its name resolved to in phase one.
//
// The returned entry is the absolute address of "main", where the engine
// should set its PC before running the linked program.
func Link(procs ProcSet) (prog ir.Program, entry int, addrs Procedures, err error) {
	if _, ok := procs[entryProcedure]; !ok {
		return nil, 0, nil, fmt.Errorf("forth: no procedure named %q", entryProcedure)
	}

	others := make([]string, 0, len(procs)-1)
	for name := range procs {
		if name != entryProcedure {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	order := append([]string{entryProcedure}, others...)

	addrs = make(Procedures, len(procs))
	for _, name := range order {
		addrs[name] = len(prog)
		prog = append(prog, procs[name]...)
	}

	for i, rec := range prog {
		if rec.Kind != ir.KindRef {
			continue
		}
		addr, ok := addrs[rec.Ref]
		if !ok {
			return nil, 0, nil, fmt.Errorf("forth: procedure %q references unknown procedure %q", procedureContaining(order, addrs, i), rec.Ref)
		}
		prog[i] = ir.OperandRecord(int64(addr))
	}

	return prog, addrs[entryProcedure], addrs, nil
}

// procedureContaining reports which procedure a resolved slot index falls
// within, for a more useful dangling-reference error message.
func procedureContaining(order []string, addrs Procedures, slot int) string {
	owner := order[0]
	for _, name := range order {
		if addrs[name] <= slot {
			owner = name
		}
	}
	return owner
}
