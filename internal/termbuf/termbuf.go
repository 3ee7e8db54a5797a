// Package termbuf holds the per-term append-only buffers used while
// ingesting a corpus: one growable []uint64 per TermId for each of the
// docs, tfs and positions columns, moved out by term-id at flush time.
package termbuf

import "nutrie/internal/types"

// TermBuffer is a mapping from TermId to an owned growable vector of
// uint64, indexed directly by term id (gaps between touched term ids are
// simply unallocated slots).
type TermBuffer struct {
	data  [][]uint64
	taken []bool
}

// New returns an empty TermBuffer.
func New() *TermBuffer {
	return &TermBuffer{}
}

func (b *TermBuffer) grow(termID types.TermId) {
	idx := int(termID)
	for idx >= len(b.data) {
		b.data = append(b.data, nil)
		b.taken = append(b.taken, false)
	}
}

// Add appends value to the buffer for termID, allocating intermediate
// slots for any term ids seen for the first time.
func (b *TermBuffer) Add(termID types.TermId, value uint64) {
	b.grow(termID)
	idx := int(termID)
	if b.taken[idx] {
		panic("termbuf: Add called on a term buffer already taken")
	}
	b.data[idx] = append(b.data[idx], value)
}

// Len reports how many values have been appended for termID so far,
// without taking the buffer.
func (b *TermBuffer) Len(termID types.TermId) int {
	idx := int(termID)
	if idx >= len(b.data) {
		return 0
	}
	return len(b.data[idx])
}

// Take moves the vector for termID out, leaving it unavailable for
// further reads. A second Take for the same term id, or a Take for a
// term id that was never added to, returns ok=false.
func (b *TermBuffer) Take(termID types.TermId) (vals []uint64, ok bool) {
	idx := int(termID)
	if idx >= len(b.data) || b.taken[idx] || b.data[idx] == nil {
		return nil, false
	}
	vals = b.data[idx]
	b.data[idx] = nil
	b.taken[idx] = true
	return vals, true
}

// PostingsStore bundles the three TermBuffers that jointly describe a
// term's postings during ingest.
type PostingsStore struct {
	Docs      *TermBuffer
	Tfs       *TermBuffer
	Positions *TermBuffer
}

// NewPostingsStore returns an empty, ready-to-use PostingsStore.
func NewPostingsStore() *PostingsStore {
	return &PostingsStore{Docs: New(), Tfs: New(), Positions: New()}
}

// GetPostings takes the docs/tfs/positions buffers for termID and
// assembles them into an owned VecPostings, closing the cumulative tfs
// column with its trailing total-count sentinel. Returns ok=false if the
// term was never seen, or its postings were already taken.
func (s *PostingsStore) GetPostings(termID types.TermId) (types.VecPostings, bool) {
	docs, ok := s.Docs.Take(termID)
	if !ok {
		return types.VecPostings{}, false
	}
	tfs, ok := s.Tfs.Take(termID)
	if !ok {
		return types.VecPostings{}, false
	}
	positions, ok := s.Positions.Take(termID)
	if !ok {
		return types.VecPostings{}, false
	}

	tfs = append(tfs, uint64(len(positions)))

	return types.VecPostings{
		Docs:      docs,
		Tfs:       tfs,
		Positions: positions,
	}, true
}
