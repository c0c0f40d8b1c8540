package lifter

// mam is the (move, add, move) window the lifter's peephole rules are
// organised around (spec §4.2.2): a MOVE lhs, an ADD by, then a MOVE rhs,
// as scanned from one point in the source.
type mam struct {
	lhs, by, rhs int
}

// matches tests the window against a concrete (L, N, R) shape.
func (m mam) matches(l, n, r int) bool {
	return m.lhs == l && m.by == n && m.rhs == r
}

// nonzeroBalanced holds iff the window describes a loop that transfers a
// whole cell elsewhere and returns to its start: a nonzero move out and
// back, balancing to zero net displacement.
func (m mam) nonzeroBalanced() bool {
	return m.lhs != 0 && m.lhs+m.rhs == 0
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	if n > 0 {
		return 1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// scanAdd consumes a run of '+'/'-' characters, each contributing ±1 to an
// accumulator seeded by initial, stopping at the first non-add character
// (spec §4.2.1).
func (l *Lifter) scanAdd(initial int) int {
	n := initial
	for {
		switch {
		case l.sc.TryConsume('+'):
			n++
		case l.sc.TryConsume('-'):
			n--
		default:
			return n
		}
	}
}

// scanMove is scanAdd's analogue for '>'/'<'.
func (l *Lifter) scanMove(initial int) int {
	n := initial
	for {
		switch {
		case l.sc.TryConsume('>'):
			n++
		case l.sc.TryConsume('<'):
			n--
		default:
			return n
		}
	}
}

// scanMoveAddMove reads the canonical MOVE lhs; ADD by; MOVE rhs triple,
// with lhs seeded by initial (spec §4.2.2). This is the shape emitted
// after every '+'/'-'/'<'/'>' character and at the head of every '['
// loop body.
func (l *Lifter) scanMoveAddMove(initial int) mam {
	lhs := l.scanMove(initial)
	by := l.scanAdd(0)
	rhs := l.scanMove(0)
	return mam{lhs: lhs, by: by, rhs: rhs}
}
