package cursor

import "nutrie/internal/types"

// Intersect is the leap-frog conjunctive intersector: it holds N cursors
// (the caller sorts them ascending by Remains() before constructing this,
// so the cheapest cursor drives the alignment loop) and yields documents
// present in all of them.
//
// Each round picks the maximum current doc across cursors as the
// candidate, advances every cursor to it, and restarts if any cursor
// landed past the candidate. When all cursors agree, that document is a
// match.
type Intersect struct {
	cursors  []Cursor
	current  types.DocId
	finished bool
	size     int
}

// NewIntersect constructs a leap-frog intersection over cursors. cursors
// must be non-empty. Every cursor is primed with one Advance so all of
// them have a defined Current before the first alignment round.
func NewIntersect(cursors []Cursor) *Intersect {
	size := cursors[0].Remains()
	for _, c := range cursors[1:] {
		if r := c.Remains(); r < size {
			size = r
		}
	}

	var current types.DocId
	finished := false
	for i, c := range cursors {
		v, ok := c.Advance()
		if !ok {
			finished = true
			continue
		}
		if i == 0 || v > current {
			current = v
		}
	}

	return &Intersect{
		cursors:  cursors,
		current:  current,
		finished: finished,
		size:     size,
	}
}

func (x *Intersect) Remains() int { return x.size }

func (x *Intersect) Current() types.DocId { return x.current }

// Advance runs the leap-frog alignment loop. A cursor already sitting at
// x.current is left alone (re-advancing it would skip past it, since
// AdvanceTo always consumes at least one element); only cursors still
// behind are caught up.
func (x *Intersect) Advance() (types.DocId, bool) {
	if x.finished {
		return 0, false
	}

	for {
		aligned := true
		for _, cur := range x.cursors {
			if cur.Current() >= x.current {
				continue
			}
			next, ok := cur.AdvanceTo(x.current)
			if !ok {
				x.finished = true
				return 0, false
			}
			if next > x.current {
				x.current = next
				aligned = false
				break
			}
		}
		if aligned {
			return x.current, true
		}
	}
}

func (x *Intersect) AdvanceTo(target types.DocId) (types.DocId, bool) {
	return advanceToLoop(x, target)
}

// CatchUp emits a single combined row for the matched document: tf summed
// and positions concatenated across every constituent cursor, since each
// cursor carries a distinct query term's occurrences in the same doc.
func (x *Intersect) CatchUp(result *types.VecPostings) int {
	doc := x.current
	var tf uint64
	var positions []types.Position

	for _, cur := range x.cursors {
		var tmp types.VecPostings
		cur.CatchUp(&tmp)
		for _, t := range tmp.Tfs {
			tf += t
		}
		positions = append(positions, tmp.Positions...)
	}

	result.Docs = append(result.Docs, doc)
	result.Tfs = append(result.Tfs, tf)
	result.Positions = append(result.Positions, positions...)

	for _, cur := range x.cursors {
		next, ok := cur.Advance()
		if !ok {
			x.finished = true
			continue
		}
		if next > x.current {
			x.current = next
		}
	}

	return 1
}
