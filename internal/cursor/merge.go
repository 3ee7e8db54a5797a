package cursor

import (
	"container/heap"
	"sort"

	"nutrie/internal/types"
)

func buildCursorHeap(cursors []Cursor) cursorHeap {
	h := make(cursorHeap, 0, len(cursors))
	for _, c := range cursors {
		doc, ok := c.Advance()
		if !ok {
			continue
		}
		h = append(h, &heapItem{doc: doc, cur: c})
	}
	heap.Init(&h)
	return h
}

// Merge is the min-heap merge with duplicates: it yields the union of its
// input cursors' documents in ascending order, emitting one posting per
// source document (the same doc id may be emitted more than once if more
// than one input cursor carries it).
type Merge struct {
	heap    cursorHeap
	current *heapItem
	size    int
}

// NewMerge merges cursors, preserving duplicate doc ids across inputs.
func NewMerge(cursors []Cursor) *Merge {
	size := 0
	for _, c := range cursors {
		size += c.Remains()
	}
	return &Merge{heap: buildCursorHeap(cursors), size: size}
}

func (m *Merge) Remains() int { return m.size }

func (m *Merge) Current() types.DocId { return m.current.doc }

func (m *Merge) Advance() (types.DocId, bool) {
	if m.heap.Len() == 0 {
		return 0, false
	}
	m.current = heap.Pop(&m.heap).(*heapItem)
	return m.current.doc, true
}

func (m *Merge) AdvanceTo(target types.DocId) (types.DocId, bool) {
	return advanceToLoop(m, target)
}

func (m *Merge) CatchUp(result *types.VecPostings) int {
	n := m.current.cur.CatchUp(result)
	if doc, ok := m.current.cur.Advance(); ok {
		m.current.doc = doc
		heap.Push(&m.heap, m.current)
	}
	return n
}

// MergeWithoutDuplicates is the min-heap merge used to compute a prefix
// node's postings: documents shared by more than one child cursor are
// combined into a single posting whose positions are the sorted,
// duplicate-free union.
type MergeWithoutDuplicates struct {
	heap      cursorHeap
	pending   *heapItem
	currentDoc types.DocId
	currentTf  uint64
	currentPos []types.Position
	size       int
	processed  int
}

// NewMergeWithoutDuplicates merges cursors, deduplicating positions for
// any document shared by more than one input. cursors must be non-empty
// and each must have at least one document remaining.
func NewMergeWithoutDuplicates(cursors []Cursor) *MergeWithoutDuplicates {
	size := 0
	for _, c := range cursors {
		size += c.Remains()
	}
	h := buildCursorHeap(cursors)
	first := heap.Pop(&h).(*heapItem)
	return &MergeWithoutDuplicates{
		heap:       h,
		pending:    first,
		currentDoc: first.doc,
		size:       size,
		processed:  1,
	}
}

func (m *MergeWithoutDuplicates) Remains() int { return m.size - m.processed }

func (m *MergeWithoutDuplicates) Current() types.DocId { return m.currentDoc }

// Advance drains every heap entry whose doc matches the group led by
// m.pending, combining their positions into one emitted posting. The
// heap entry where the doc first differs becomes the new m.pending and
// stops the drain; it is NOT folded into groupDoc's field, since its doc
// belongs to the next group, not this one.
func (m *MergeWithoutDuplicates) Advance() (types.DocId, bool) {
	if m.pending == nil {
		return 0, false
	}

	ptr := m.pending
	m.pending = nil
	groupDoc := ptr.doc

	var positionsBuf []types.Position
	for {
		if ptr.doc == groupDoc {
			m.processed++
			var tmp types.VecPostings
			ptr.cur.CatchUp(&tmp)
			positionsBuf = append(positionsBuf, tmp.Positions...)

			if nextDoc, ok := ptr.cur.Advance(); ok {
				ptr.doc = nextDoc
				heap.Push(&m.heap, ptr)
			}
		} else {
			m.pending = ptr
			break
		}

		if m.heap.Len() == 0 {
			break
		}
		ptr = heap.Pop(&m.heap).(*heapItem)
	}

	if len(positionsBuf) == 0 {
		panic("cursor: MergeWithoutDuplicates produced no positions for a document; postings must carry non-empty positions")
	}
	sort.Slice(positionsBuf, func(i, j int) bool { return positionsBuf[i] < positionsBuf[j] })
	m.currentDoc = groupDoc
	m.currentPos = keepUnique(positionsBuf)
	m.currentTf = uint64(len(m.currentPos))

	return groupDoc, true
}

func (m *MergeWithoutDuplicates) AdvanceTo(target types.DocId) (types.DocId, bool) {
	return advanceToLoop(m, target)
}

func (m *MergeWithoutDuplicates) CatchUp(result *types.VecPostings) int {
	result.Docs = append(result.Docs, m.currentDoc)
	result.Tfs = append(result.Tfs, m.currentTf)
	result.Positions = append(result.Positions, m.currentPos...)
	return 1
}
