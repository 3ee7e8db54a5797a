// Package cursor implements the DAAT (document-at-a-time) query core:
// cursor primitives over postings, a leap-frog conjunctive intersector,
// and heap-based mergers with and without duplicate elimination.
package cursor

import (
	"nutrie/internal/seq"
	"nutrie/internal/types"
)

// Postings bundles the three column sequences a cursor reads from.
type Postings struct {
	Docs      seq.Sequence
	Tfs       seq.Sequence
	Positions seq.Sequence
}

// Cursor is the unified DAAT contract every postings source implements:
// raw on-disk postings, a leap-frog intersection, and the two heap
// mergers are all Cursors.
type Cursor interface {
	// Current returns the document the cursor sits on. Undefined before
	// the first Advance.
	Current() types.DocId

	// Advance moves to the next document.
	Advance() (types.DocId, bool)

	// AdvanceTo advances until Current >= target. The default behavior is
	// a loop over Advance; RawCursor overrides it with Sequence.SkipTo.
	AdvanceTo(target types.DocId) (types.DocId, bool)

	// CatchUp emits this cursor's postings at Current (doc, tf,
	// positions) into result, decoding positions as needed. Returns the
	// number of documents emitted (1 for raw/merge cursors, >=1
	// cumulatively for intersection).
	CatchUp(result *types.VecPostings) int

	// Remains is an upper bound on the number of documents left.
	Remains() int
}

// Collect drains c fully into a fresh VecPostings.
func Collect(c Cursor) types.VecPostings {
	var result types.VecPostings
	for {
		if _, ok := c.Advance(); !ok {
			break
		}
		c.CatchUp(&result)
	}
	return result
}

// advanceToLoop is the default AdvanceTo behavior shared by cursors that
// have no cheaper way to skip ahead.
func advanceToLoop(c Cursor, target types.DocId) (types.DocId, bool) {
	for {
		doc, ok := c.Advance()
		if !ok {
			return 0, false
		}
		if doc >= target {
			return doc, true
		}
	}
}
