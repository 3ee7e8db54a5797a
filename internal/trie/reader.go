package trie

import (
	"encoding/binary"
	"unicode/utf8"
)

// StaticTrie is a read-only view over a flushed dictionary file: the
// node-stream portion (headers, child tables) and the terms buffer
// appended after it, as laid out by Build/Result.
type StaticTrie struct {
	dict    []byte
	terms   []byte
	rootPtr uint32
}

// NewStaticTrie wraps bytes (the full dictionary file, however it was
// obtained — read into memory or memory-mapped) using the dictSize and
// rootPtr recorded in the meta file at build time.
func NewStaticTrie(bytes []byte, dictSize, rootPtr uint64) *StaticTrie {
	return &StaticTrie{
		dict:    bytes[:dictSize],
		terms:   bytes[dictSize:],
		rootPtr: uint32(rootPtr),
	}
}

func (t *StaticTrie) headerAt(ptr uint32) TrieNodeHeader {
	return UnmarshalHeader(t.dict[ptr:])
}

func (t *StaticTrie) edgeLabel(h TrieNodeHeader) string {
	return string(t.terms[h.TermPtr : h.TermPtr+uint32(h.TermLength)])
}

func (t *StaticTrie) childrenIndex(ptr uint32, h TrieNodeHeader) []uint32 {
	start := ptr + HeaderSize
	out := make([]uint32, h.NumChildren)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(t.dict[start+uint32(i)*4:])
	}
	return out
}

func (t *StaticTrie) childPointers(ptr uint32, h TrieNodeHeader) []uint32 {
	start := ptr + HeaderSize + h.NumChildren*4
	out := make([]uint32, h.NumChildren)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(t.dict[start+uint32(i)*4:])
	}
	return out
}

// FindTerm walks from the root toward term. At each node it compares
// the node's edge label against whatever of term remains:
//
//   - the label matches fully and query remains: descend into the
//     child whose edge starts with the next rune of what's left;
//   - both end together: exact match;
//   - the query is exhausted partway into the label: a prefix match,
//     returned only when allowPrefix is set;
//   - neither of the above (a mismatch before either side ends): not
//     found.
func (t *StaticTrie) FindTerm(term string, allowPrefix bool) (TrieNodeHeader, uint32, bool) {
	ptr := t.rootPtr
	h := t.headerAt(ptr)
	remaining := term

	for {
		label := t.edgeLabel(h)
		skip := commonPrefixLen(label, remaining)

		switch {
		case skip == len(label) && skip == len(remaining):
			return h, ptr, true

		case skip == len(label):
			remaining = remaining[skip:]
			r, _ := utf8.DecodeRuneInString(remaining)
			idx := t.childrenIndex(ptr, h)
			pos, found := binarySearchRune(idx, uint32(r))
			if !found {
				return TrieNodeHeader{}, 0, false
			}
			ptr = t.childPointers(ptr, h)[pos]
			h = t.headerAt(ptr)

		case skip == len(remaining):
			if allowPrefix {
				return h, ptr, true
			}
			return TrieNodeHeader{}, 0, false

		default:
			return TrieNodeHeader{}, 0, false
		}
	}
}

func binarySearchRune(idx []uint32, target uint32) (int, bool) {
	lo, hi := 0, len(idx)
	for lo < hi {
		mid := (lo + hi) / 2
		if idx[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(idx) && idx[lo] == target {
		return lo, true
	}
	return 0, false
}

// OwnPostingsWindow returns the (start, count) window into the global
// docs/tfs/positions columns holding a node's own word postings.
func OwnPostingsWindow(h TrieNodeHeader) (start, count uint64) {
	return h.PostingsPtr, h.NumPostings
}

// PrefixPostingsWindow returns the (start, count) window holding the
// duplicate-free merge of a node's children, falling back to ok=false
// when the node carries no such merge (no children, or a defensive
// case where none of them had postings — see SPEC_FULL.md §4.5).
func PrefixPostingsWindow(h TrieNodeHeader) (start, count uint64, ok bool) {
	if h.NumPrefixPostings == 0 {
		return 0, 0, false
	}
	return h.PostingsPtr + h.NumPostings, uint64(h.NumPrefixPostings), true
}
