// Command bfc is the compiler: it reads Brainfuck source from standard
// input, lifts it through the configured optimiser passes, and writes the
// serialized IR to standard output.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/grimdork/climate"

	"github.com/Urethramancer/bf68/ir"
	"github.com/Urethramancer/bf68/lifter"
	"github.com/Urethramancer/bf68/scanner"
)

// options binds the compiler's flag surface: the group toggles plus one
// pair of on/off flags per recognised optimiser feature.
type options struct {
	All  bool `long:"all" help:"Enable every optimiser feature."`
	None bool `long:"none" help:"Disable every optimiser feature."`

	DeadCode   bool `long:"deadcode" help:"Remove loops that provably never execute."`
	NoDeadCode bool `long:"no-deadcode" help:"Keep provably dead loops in the output."`

	SeekZero   bool `long:"seekzero" help:"Recognise the seek-to-zero-cell idiom."`
	NoSeekZero bool `long:"no-seekzero" help:"Disable seek-to-zero-cell recognition."`

	PruneIfLocIsZero   bool `long:"prune-if-loc-is-zero" help:"Recognise the SET_ZERO idiom."`
	NoPruneIfLocIsZero bool `long:"no-prune-if-loc-is-zero" help:"Disable SET_ZERO recognition."`

	XfrMultiple   bool `long:"xfrmultiple" help:"Recognise the multiply-transfer idiom."`
	NoXfrMultiple bool `long:"no-xfrmultiple" help:"Disable multiply-transfer recognition."`

	Superfluous   bool `long:"superfluous" help:"Discard arithmetic immediately undone by SET_ZERO."`
	NoSuperfluous bool `long:"no-superfluous" help:"Keep arithmetic that SET_ZERO would otherwise discard."`
}

func main() {
	log.SetFlags(0)

	var opts options
	if _, err := climate.Parse(&opts); err != nil {
		log.Fatalf("flag error: %v", err)
	}

	flags := resolveFlags(opts)

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("reading source: %v", err)
	}

	sc := scanner.New(bytes.NewReader(src))
	prog, err := lifter.New(sc, flags).Lift()
	if err != nil {
		log.Fatalf("lift: %v", err)
	}

	if err := ir.Validate(prog); err != nil {
		log.Fatalf("internal error: lifted program failed validation: %v", err)
	}

	out, err := ir.Encode(prog)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		log.Fatalf("writing IR: %v", err)
	}
	fmt.Fprintln(os.Stdout)
}

// resolveFlags turns the parsed options into a lifter.Flags value. The
// group toggle sets the baseline; a feature-specific flag always overrides
// it, regardless of which came first on the command line, since climate
// binds each long flag to a single final boolean with no ordering
// information attached.
func resolveFlags(opts options) lifter.Flags {
	flags := lifter.NoFlags()
	if opts.All {
		flags = lifter.AllFlags()
	}
	if opts.None {
		flags = lifter.NoFlags()
	}

	if opts.DeadCode {
		flags.DeadCode = true
	}
	if opts.NoDeadCode {
		flags.DeadCode = false
	}
	if opts.SeekZero {
		flags.SeekZero = true
	}
	if opts.NoSeekZero {
		flags.SeekZero = false
	}
	if opts.PruneIfLocIsZero {
		flags.PruneIfLocIsZero = true
	}
	if opts.NoPruneIfLocIsZero {
		flags.PruneIfLocIsZero = false
	}
	if opts.XfrMultiple {
		flags.XfrMultiple = true
	}
	if opts.NoXfrMultiple {
		flags.XfrMultiple = false
	}
	if opts.Superfluous {
		flags.Superfluous = true
	}
	if opts.NoSuperfluous {
		flags.Superfluous = false
	}
	return flags
}
