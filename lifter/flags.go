package lifter

// Flags is the value-typed optimizer configuration passed once to the
// lifter constructor (spec §9, "Global state and configuration"). Each
// field gates exactly one of the peephole optimisations named in
// spec §6.3's recognised CLI feature list.
type Flags struct {
	// DeadCode gates skipping a loop body entirely when loc_is_zero is
	// provably true on entry ("deadcode").
	DeadCode bool
	// SeekZero gates lifting [>] / [<] to SEEK_RIGHT / SEEK_LEFT ("seekzero").
	SeekZero bool
	// PruneIfLocIsZero gates lifting [+] / [-] to SET_ZERO ("prune-if-loc-is-zero").
	PruneIfLocIsZero bool
	// XfrMultiple gates lifting balanced transfer loops like [->++<] to
	// XFR_MULTIPLE ("xfrmultiple").
	XfrMultiple bool
	// Superfluous gates the unplant-before-SET_ZERO cleanup described in
	// spec §4.2.5 ("superfluous").
	Superfluous bool
}

// AllFlags returns every optimisation enabled, the lifting performed by
// the CLI's --all switch.
func AllFlags() Flags {
	return Flags{
		DeadCode:         true,
		SeekZero:         true,
		PruneIfLocIsZero: true,
		XfrMultiple:      true,
		Superfluous:      true,
	}
}

// NoFlags returns every optimisation disabled, the lifting performed by
// the CLI's --none switch. It is also the zero value of Flags.
func NoFlags() Flags {
	return Flags{}
}
