// Package trie builds and reads the compressed-trie dictionary: a
// radix tree over the sorted term vocabulary, flushed to disk as a
// stream of fixed-size node headers interleaved with child tables and
// columnar postings, terminated by the raw terms buffer.
package trie

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"nutrie/internal/cursor"
	"nutrie/internal/seq"
	"nutrie/internal/termbuf"
	"nutrie/internal/types"
)

// nodeID indexes into a buildState's arena. Slots are never freed
// individually; a fork reuses two existing slots by swapping their
// contents rather than allocating new ones, so indices taken earlier in
// the build remain valid for the rest of it.
type nodeID int32

const noNode nodeID = -1

// node is one in-progress trie node living in the build arena. Two
// postings fields: own word postings (postings) and the duplicate-free
// merge of this node's children (prefixPostings) — see SPEC_FULL.md
// §4.5 for why these stay separate through flush.
type node struct {
	term           string
	termPtr        int
	termID         types.TermId
	isWord         bool
	postings       *types.VecPostings
	prefixPostings *types.VecPostings
	parent         nodeID
	children       []nodeID
	dictPos        int64
}

// Result reports the sizes the meta file records after a build.
type Result struct {
	DictSize       uint64
	RootPtr        uint64
	TermBufferSize uint64
}

// Encoders bundles the three on-disk postings column writers a build
// streams through as each node flushes.
type Encoders struct {
	Docs      io.Writer
	Tfs       io.Writer
	Positions io.Writer
}

type buildState struct {
	arena       []node
	dictOut     io.Writer
	dictPtr     int64
	postingsPtr uint64
	lastTf      uint64
	docsEnc     *columnWriter
	tfsEnc      *columnWriter
	posEnc      *columnWriter
}

func (s *buildState) newNode(parent nodeID, term string, termPtr int, termID types.TermId, isWord bool, postings *types.VecPostings) nodeID {
	s.arena = append(s.arena, node{
		term:     term,
		termPtr:  termPtr,
		termID:   termID,
		isWord:   isWord,
		postings: postings,
		parent:   parent,
		dictPos:  -1,
	})
	return nodeID(len(s.arena) - 1)
}

func (s *buildState) n(id nodeID) *node { return &s.arena[id] }

// commonPrefixLen returns the number of leading bytes a and b share.
// Input terms are sorted and unique, so a dispatch based on this value
// never needs to special-case a == b.
func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Build drives a single forward pass over terms (sorted ascending by
// Text, unique), constructing the radix trie and writing it to dictOut
// with postings flowing through enc as each subtree finalizes.
// startSerial is the first term id available for synthesized prefix
// nodes; it must be greater than every id already assigned to a real
// term in terms.
func Build(startSerial types.TermId, terms []types.Term, store *termbuf.PostingsStore, dictOut io.Writer, enc Encoders) (Result, error) {
	s := &buildState{
		dictOut: dictOut,
		docsEnc: newColumnWriter(enc.Docs),
		tfsEnc:  newColumnWriter(enc.Tfs),
		posEnc:  newColumnWriter(enc.Positions),
	}

	root1 := s.newNode(noNode, "", 0, 0, false, nil)
	root2 := s.newNode(root1, "", 0, 0, false, nil)
	s.n(root1).children = append(s.n(root1).children, root2)

	parent := root1
	current := root2
	termSerial := startSerial
	bufPtr := 0

	for _, t := range terms {
		postings, ok := store.GetPostings(t.TermId)
		if !ok {
			return Result{}, fmt.Errorf("trie: term %q (id %d) has no recorded postings", t.Text, t.TermId)
		}

		l := commonPrefixLen(s.n(current).term, t.Text)

		for l < len(s.n(parent).term) {
			if err := s.flush(current, parent); err != nil {
				return Result{}, err
			}
			current = parent
			parent = s.n(parent).parent
		}

		switch {
		case l >= len(s.n(current).term):
			// t extends current: current becomes the parent of the new
			// word node appended below.
			parent = current

		case l == len(s.n(parent).term):
			// current is a sibling of t under the same parent: flush it
			// as-is, the new word node joins parent's children list too.
			if err := s.flush(current, parent); err != nil {
				return Result{}, err
			}

		default:
			// l > len(parent.term): current and t share a prefix longer
			// than parent's term but shorter than current's; synthesize
			// a fork node holding that shared prefix and relocate
			// current underneath it.
			forkTerm := s.n(current).term[:l]
			fork := s.newNode(s.n(current).parent, forkTerm, s.n(current).termPtr, termSerial, false, nil)
			termSerial++

			if err := s.flush(current, fork); err != nil {
				return Result{}, err
			}

			parent = current
			current = fork
			// Swap contents, not identities: parent's slot still holds
			// whatever external children list pointed at current before
			// this fork, so after the swap that same slot correctly
			// resolves to the fork without updating anyone else.
			s.arena[current], s.arena[parent] = s.arena[parent], s.arena[current]
			s.n(current).parent = parent
			s.n(parent).children = append(s.n(parent).children, fork)
		}

		word := s.newNode(parent, t.Text, bufPtr, t.TermId, true, &postings)
		s.n(parent).children = append(s.n(parent).children, word)
		current = word
		bufPtr += len(t.Text)
	}

	for s.n(parent).parent != noNode {
		if err := s.flush(current, parent); err != nil {
			return Result{}, err
		}
		current = parent
		parent = s.n(parent).parent
	}

	rootPtr := s.dictPtr
	if err := s.flush(current, parent); err != nil {
		return Result{}, err
	}
	dictSize := s.dictPtr

	if err := s.tfsEnc.writeSequence(seq.New([]uint64{s.lastTf})); err != nil {
		return Result{}, fmt.Errorf("trie: writing tfs sentinel: %w", err)
	}

	var termBufSize int
	for _, t := range terms {
		n, err := dictOut.Write([]byte(t.Text))
		termBufSize += n
		if err != nil {
			return Result{}, fmt.Errorf("trie: writing term buffer: %w", err)
		}
	}

	return Result{
		DictSize:       uint64(dictSize),
		RootPtr:        uint64(rootPtr),
		TermBufferSize: uint64(termBufSize),
	}, nil
}

// flush finalizes node nIdx, whose suffix relative to parentIdx is now
// fixed: if it has children, computes their duplicate-free merge as its
// prefix postings; writes its header, child tables and postings
// columns; then drops its children list (their dictPos is already
// recorded, nothing downstream needs the in-memory list again).
func (s *buildState) flush(nIdx, parentIdx nodeID) error {
	n := s.n(nIdx)

	if len(n.children) > 0 {
		merged, err := s.mergeChildren(n.children)
		if err != nil {
			return err
		}
		n.prefixPostings = merged
	}

	parentTerm := s.n(parentIdx).term
	suffix := n.term[len(parentTerm):]
	if len(suffix) > math.MaxUint16 {
		return fmt.Errorf("trie: term suffix %q exceeds %d bytes", suffix, math.MaxUint16)
	}
	if len(n.children) > math.MaxUint32 {
		return fmt.Errorf("trie: node %q has too many children (%d)", n.term, len(n.children))
	}

	header := TrieNodeHeader{
		TermPtr:     uint32(n.termPtr + len(parentTerm)),
		TermID:      n.termID,
		TermLength:  uint16(len(suffix)),
		NumChildren: uint32(len(n.children)),
		IsWord:      n.isWord,
		PostingsPtr: s.postingsPtr,
	}
	if n.postings != nil {
		header.NumPostings = uint64(len(n.postings.Docs))
	}
	if n.prefixPostings != nil {
		header.NumPrefixPostings = uint32(len(n.prefixPostings.Docs))
	}

	dictPosition := s.dictPtr
	if err := s.write(header.Marshal()); err != nil {
		return fmt.Errorf("trie: writing node header: %w", err)
	}

	if len(n.children) > 0 {
		if err := s.writeChildTables(n); err != nil {
			return err
		}
	}

	// Term id 0 is reserved for the dummy roots; the real root (root2)
	// is flushed for its header and child table but never carries
	// postings of its own, matching the reader never issuing a
	// prefix-query for the empty string.
	if n.termID != 0 {
		if n.postings != nil {
			if err := s.writePostings(n.postings); err != nil {
				return fmt.Errorf("trie: writing postings for %q: %w", n.term, err)
			}
		}
		if n.prefixPostings != nil {
			if err := s.writePostings(n.prefixPostings); err != nil {
				return fmt.Errorf("trie: writing prefix postings for %q: %w", n.term, err)
			}
		}
	}

	n.children = nil
	n.dictPos = dictPosition
	return nil
}

func (s *buildState) write(b []byte) error {
	n, err := s.dictOut.Write(b)
	s.dictPtr += int64(n)
	return err
}

// writeChildTables writes a node's child index (first suffix codepoint
// per child, for binary search) followed by its child pointer table
// (each child's dict offset), then pads to the next 8-byte boundary so
// the next node header starts aligned.
func (s *buildState) writeChildTables(n *node) error {
	prefixLen := len(n.term)
	var buf [4]byte

	for _, cid := range n.children {
		suffix := s.n(cid).term[prefixLen:]
		r, _ := utf8.DecodeRuneInString(suffix)
		binary.LittleEndian.PutUint32(buf[:], uint32(r))
		if err := s.write(buf[:]); err != nil {
			return fmt.Errorf("trie: writing child index: %w", err)
		}
	}
	for _, cid := range n.children {
		binary.LittleEndian.PutUint32(buf[:], uint32(s.n(cid).dictPos))
		if err := s.write(buf[:]); err != nil {
			return fmt.Errorf("trie: writing child pointer: %w", err)
		}
	}

	if pad := alignPadding(s.dictPtr, headerAlign); pad > 0 {
		if err := s.write(make([]byte, pad)); err != nil {
			return fmt.Errorf("trie: writing alignment padding: %w", err)
		}
	}
	return nil
}

// writePostings writes one postings column window: positions
// delta-encoded per document, then docs as absolute ids, then tfs as a
// window of the single global cumulative stream (continued from
// s.lastTf so the tfs file reads as one seamless sequence across every
// flushed node, per-node window boundaries falling out of postingsPtr
// bookkeeping alone).
func (s *buildState) writePostings(p *types.VecPostings) error {
	numDocs := len(p.Docs)

	for i := 0; i < numDocs; i++ {
		lo, hi := p.Tfs[i], p.Tfs[i+1]
		delta := seq.NewDeltaEncoder(seq.New(p.Positions[lo:hi]))
		if err := s.posEnc.writeSequence(delta); err != nil {
			return err
		}
	}

	if err := s.docsEnc.writeSequence(seq.New(p.Docs)); err != nil {
		return err
	}

	globalTfs := make([]uint64, numDocs)
	for i := 0; i < numDocs; i++ {
		globalTfs[i] = s.lastTf + p.Tfs[i]
	}
	if err := s.tfsEnc.writeSequence(seq.New(globalTfs)); err != nil {
		return err
	}

	s.lastTf += p.Tfs[numDocs] - p.Tfs[0]
	s.postingsPtr += uint64(numDocs)
	return nil
}

// mergeChildren computes the duplicate-free union of every child's
// effective postings (its own word postings plus, if it is itself an
// internal node, its own prefix-merge), in cumulative-offset form ready
// either for disk or for another mergeChildren call one level up.
func (s *buildState) mergeChildren(children []nodeID) (*types.VecPostings, error) {
	var cursors []cursor.Cursor
	for _, cid := range children {
		c := s.n(cid)
		if c.postings != nil {
			cursors = append(cursors, rawCursorOver(c.postings))
		}
		if c.prefixPostings != nil {
			cursors = append(cursors, rawCursorOver(c.prefixPostings))
		}
	}
	if len(cursors) == 0 {
		return nil, nil
	}

	merged := cursor.Collect(cursor.NewMergeWithoutDuplicates(cursors))
	merged.Tfs = toCumulative(merged.Tfs)
	return &merged, nil
}

func rawCursorOver(p *types.VecPostings) *cursor.RawCursor {
	return cursor.NewRawCursor(cursor.Postings{
		Docs:      seq.New(p.Docs),
		Tfs:       seq.New(p.Tfs),
		Positions: seq.New(p.Positions),
	})
}

// toCumulative turns a flat per-doc tf count array (the shape every
// Cursor.CatchUp emits) into the cumulative-offset form VecPostings
// carries everywhere else: length len(tfs)+1, Tfs[0] == 0, Tfs[i+1] -
// Tfs[i] == tfs[i].
func toCumulative(tfs []uint64) []uint64 {
	cum := make([]uint64, len(tfs)+1)
	var running uint64
	for i, tf := range tfs {
		cum[i] = running
		running += tf
	}
	cum[len(tfs)] = running
	return cum
}
