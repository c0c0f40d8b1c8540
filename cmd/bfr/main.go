// Command bfr is the runner: it loads one or more serialized IR files and
// executes each in turn against the shared standard input and output
// streams.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/grimdork/climate"

	"github.com/Urethramancer/bf68/engine"
	"github.com/Urethramancer/bf68/forth"
	"github.com/Urethramancer/bf68/ir"
)

type options struct {
	Cycles int  `long:"cycles" short:"c" help:"Maximum instructions to execute per program before aborting (0 = unlimited)."`
	Forth  bool `long:"forth" help:"Treat each file as a Brainforth named-procedure set and link it before running."`
}

func main() {
	log.SetFlags(0)

	opts := options{Cycles: 0}
	args, err := climate.Parse(&opts)
	if err != nil {
		log.Fatalf("flag error: %v", err)
	}
	if len(args) == 0 {
		log.Fatalf("usage: bfr [options] <file.ir> [file.ir ...]")
	}

	if opts.Forth {
		forth.Register()
	}

	maxSteps := -1
	if opts.Cycles > 0 {
		maxSteps = opts.Cycles
	}

	multiple := len(args) > 1
	for _, path := range args {
		if multiple {
			fmt.Fprintf(os.Stderr, "--- running %s ---\n", path)
		}
		if err := runFile(path, maxSteps, opts.Forth); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
}

func runFile(path string, maxSteps int, forthDialect bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading IR file: %w", err)
	}

	prog, err := loadProgram(data, forthDialect)
	if err != nil {
		return err
	}
	if err := ir.Validate(prog); err != nil {
		return fmt.Errorf("invalid IR: %w", err)
	}

	e := engine.New(prog, os.Stdin, os.Stdout)
	steps, runErr := e.RunLimited(maxSteps)

	switch {
	case runErr == engine.ErrStepLimit:
		fmt.Fprintf(os.Stderr, "halted: step limit of %d instructions reached\n", maxSteps)
		return runErr
	case runErr != nil:
		fmt.Fprintf(os.Stderr, "executed %d instructions before failing\n", steps)
		return runErr
	default:
		fmt.Fprintf(os.Stderr, "executed %d instructions\n", steps)
	}
	return nil
}

// loadProgram decodes a file's bytes as either a core-dialect ir.Program
// array, or, under --forth, a Brainforth forth.ProcSet ("{ name ->
// [records] }", spec §6.2) which must first be linked into one flat
// program via forth.Link's two-phase resolution of Ref records.
func loadProgram(data []byte, forthDialect bool) (ir.Program, error) {
	if !forthDialect {
		prog, err := ir.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding IR: %w", err)
		}
		return prog, nil
	}

	var procs forth.ProcSet
	if err := json.Unmarshal(data, &procs); err != nil {
		return nil, fmt.Errorf("decoding Brainforth procedure set: %w", err)
	}
	prog, _, _, err := forth.Link(procs)
	if err != nil {
		return nil, fmt.Errorf("linking Brainforth procedures: %w", err)
	}
	return prog, nil
}
