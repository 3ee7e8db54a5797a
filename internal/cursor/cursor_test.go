package cursor

import (
	"testing"

	"nutrie/internal/seq"
	"nutrie/internal/types"
)

// rawFromAbsolute builds a RawCursor over plain (non-delta, non-cumulative)
// in-memory columns, mirroring how the indexer reads back postings it just
// built before they've been flushed through the on-disk encoders.
func rawFromAbsolute(docs, tfs, positions []uint64) *RawCursor {
	return NewRawCursor(Postings{
		Docs:      seq.New(docs),
		Tfs:       seq.New(tfs),
		Positions: seq.New(positions),
	})
}

func TestRawCursorCatchUp(t *testing.T) {
	// doc 1 has positions [0,5], doc 3 has position [2]
	c := rawFromAbsolute(
		[]uint64{1, 3},
		[]uint64{0, 2, 3},
		[]uint64{0, 5, 2},
	)

	var result types.VecPostings
	doc, ok := c.Advance()
	if !ok || doc != 1 {
		t.Fatalf("Advance() = %v, %v, want 1, true", doc, ok)
	}
	c.CatchUp(&result)

	doc, ok = c.Advance()
	if !ok || doc != 3 {
		t.Fatalf("Advance() = %v, %v, want 3, true", doc, ok)
	}
	c.CatchUp(&result)

	if _, ok := c.Advance(); ok {
		t.Fatalf("expected exhaustion")
	}

	wantDocs := []types.DocId{1, 3}
	wantTfs := []uint64{2, 1}
	wantPositions := []types.Position{0, 5, 2}
	if !equalDocs(result.Docs, wantDocs) || !equalU64(result.Tfs, wantTfs) || !equalPos(result.Positions, wantPositions) {
		t.Fatalf("got %+v", result)
	}
}

func TestRawCursorAdvanceTo(t *testing.T) {
	c := rawFromAbsolute(
		[]uint64{1, 3, 7, 9},
		[]uint64{0, 1, 2, 3, 4},
		[]uint64{10, 20, 30, 40},
	)

	doc, ok := c.AdvanceTo(5)
	if !ok || doc != 7 {
		t.Fatalf("AdvanceTo(5) = %v, %v, want 7, true", doc, ok)
	}
	var result types.VecPostings
	c.CatchUp(&result)
	if !equalDocs(result.Docs, []types.DocId{7}) || !equalU64(result.Tfs, []uint64{1}) || !equalPos(result.Positions, []types.Position{30}) {
		t.Fatalf("got %+v", result)
	}
}

func TestIntersectTwoWay(t *testing.T) {
	a := rawFromAbsolute([]uint64{1, 2, 5, 8}, []uint64{0, 1, 2, 3, 4}, []uint64{1, 2, 3, 4})
	b := rawFromAbsolute([]uint64{2, 3, 8, 9}, []uint64{0, 1, 2, 3, 4}, []uint64{10, 20, 30, 40})

	x := NewIntersect([]Cursor{a, b})
	result := Collect(x)

	if !equalDocs(result.Docs, []types.DocId{2, 8}) {
		t.Fatalf("docs = %v, want [2 8]", result.Docs)
	}
	// doc 2: a contributes tf 1 (position 2), b contributes tf 1 (position 10)
	if !equalU64(result.Tfs, []uint64{2, 2}) {
		t.Fatalf("tfs = %v, want [2 2]", result.Tfs)
	}
	if !equalPos(result.Positions, []types.Position{2, 10, 4, 30}) {
		t.Fatalf("positions = %v", result.Positions)
	}
}

func TestIntersectEmptyWhenDisjoint(t *testing.T) {
	a := rawFromAbsolute([]uint64{1, 3}, []uint64{0, 1, 2}, []uint64{1, 2})
	b := rawFromAbsolute([]uint64{2, 4}, []uint64{0, 1, 2}, []uint64{1, 2})

	result := Collect(NewIntersect([]Cursor{a, b}))
	if len(result.Docs) != 0 {
		t.Fatalf("expected no matches, got %v", result.Docs)
	}
}

func TestMergePreservesDuplicates(t *testing.T) {
	a := rawFromAbsolute([]uint64{1, 4}, []uint64{0, 1, 2}, []uint64{1, 2})
	b := rawFromAbsolute([]uint64{4, 5}, []uint64{0, 1, 2}, []uint64{3, 4})

	result := Collect(NewMerge([]Cursor{a, b}))
	if !equalDocs(result.Docs, []types.DocId{1, 4, 4, 5}) {
		t.Fatalf("docs = %v, want [1 4 4 5]", result.Docs)
	}
}

func TestMergeWithoutDuplicatesCombinesPositions(t *testing.T) {
	a := rawFromAbsolute([]uint64{1, 4}, []uint64{0, 1, 2}, []uint64{5, 2})
	b := rawFromAbsolute([]uint64{4, 6}, []uint64{0, 1, 2}, []uint64{2, 9})

	result := Collect(NewMergeWithoutDuplicates([]Cursor{a, b}))
	if !equalDocs(result.Docs, []types.DocId{1, 4, 6}) {
		t.Fatalf("docs = %v, want [1 4 6]", result.Docs)
	}
	// doc 4 is shared: positions [2] from a and [2] from b, deduped to [2]
	if !equalU64(result.Tfs, []uint64{1, 1, 1}) {
		t.Fatalf("tfs = %v, want [1 1 1]", result.Tfs)
	}
	if !equalPos(result.Positions, []types.Position{5, 2, 9}) {
		t.Fatalf("positions = %v", result.Positions)
	}
}

func equalDocs(a, b []types.DocId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalU64(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalPos(a, b []types.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
