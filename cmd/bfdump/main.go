// Command bfdump prints a serialized IR file as a human-readable listing,
// the Brainfuck-toolchain analogue of a disassembler.
package main

import (
	"fmt"
	"os"

	"github.com/Urethramancer/bf68/ir"
	"github.com/Urethramancer/bf68/irdump"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file.ir>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading IR file: %v\n", err)
		os.Exit(1)
	}

	prog, err := ir.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decoding IR: %v\n", err)
		os.Exit(1)
	}

	out, err := irdump.Dump(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
