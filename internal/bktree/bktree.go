// Package bktree implements a Levenshtein-distance BK-tree over the
// indexed vocabulary: an orthogonal, optional index, not on the
// exact/prefix AND query path. The indexer writes it as a sixth on-disk
// file after the dictionary; search -fuzzy uses it to suggest terms
// within a given edit distance when an exact/prefix lookup misses.
package bktree

import (
	"encoding/binary"
	"fmt"
	"io"

	"nutrie/internal/types"
	"sort"
)

// node is one entry in the tree: a term, keyed by its edit distance to
// its parent, with children ordered ascending by that distance.
type node struct {
	term     []rune
	termID   types.TermId
	distance int
	children []*node
}

// Tree is a root-anchored BK-tree. The zero value is not useful; use
// New.
type Tree struct {
	root *node
	size int
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: &node{term: nil}}
}

// levenshtein computes the edit distance between a and b using the
// classic two-row dynamic-programming recurrence over runes.
func levenshtein(a, b []rune) int {
	alen, blen := len(a), len(b)
	prev := make([]int, alen+1)
	curr := make([]int, alen+1)

	for j := 0; j <= alen; j++ {
		prev[j] = j
	}

	for i := 1; i <= blen; i++ {
		curr[0] = i
		for j := 1; j <= alen; j++ {
			cost := 1
			if b[i-1] == a[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[alen]
}

func (n *node) insert(term []rune, termID types.TermId) {
	d := levenshtein(n.term, term)

	pos := len(n.children)
	for i, ch := range n.children {
		if ch.distance == d {
			ch.insert(term, termID)
			return
		}
		if ch.distance > d {
			pos = i
			break
		}
	}

	child := &node{term: term, termID: termID, distance: d}
	n.children = append(n.children[:pos], append([]*node{child}, n.children[pos:]...)...)
}

// Insert adds term (with its assigned TermId) to the tree.
func (t *Tree) Insert(term string, termID types.TermId) {
	t.root.insert([]rune(term), termID)
	t.size++
}

// Match is one candidate returned by a fuzzy lookup.
type Match struct {
	Term     string
	TermID   types.TermId
	Distance int
}

// FindWithinDistance returns every term in the tree within maxDistance
// edits of query, ascending by distance. The BK-tree triangle-inequality
// pruning skips any subtree whose distance-to-parent places it outside
// [d-maxDistance, d+maxDistance] for the query's distance d to that
// subtree's root.
func (t *Tree) FindWithinDistance(query string, maxDistance int) []Match {
	q := []rune(query)
	var out []Match
	search(t.root, q, maxDistance, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func search(n *node, query []rune, maxDistance int, out *[]Match) {
	if n.term == nil {
		for _, ch := range n.children {
			search(ch, query, maxDistance, out)
		}
		return
	}

	d := levenshtein(n.term, query)
	if d <= maxDistance {
		*out = append(*out, Match{Term: string(n.term), TermID: n.termID, Distance: d})
	}

	lo, hi := d-maxDistance, d+maxDistance
	for _, ch := range n.children {
		// children are sorted ascending by distance-to-parent, so once
		// one exceeds hi, every later sibling does too.
		if ch.distance > hi {
			break
		}
		if ch.distance >= lo {
			search(ch, query, maxDistance, out)
		}
	}
}

// Size reports how many terms have been inserted.
func (t *Tree) Size() int {
	return t.size
}

// Write serializes the vocabulary in insertion order: inserting terms
// back in that same order reconstructs an identical tree (the
// distance-bucket insertion sort in insert is deterministic), so the
// on-disk bk file need only be a flat (term, term_id) list, not the
// tree's shape.
func Write(w io.Writer, terms []types.Term) error {
	var lenBuf [4]byte
	var idBuf [4]byte
	for _, t := range terms {
		if len(t.Text) > 0xFFFF {
			return fmt.Errorf("bktree: term %q too long to serialize", t.Text)
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(t.Text)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, t.Text); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(idBuf[:], t.TermId)
		if _, err := w.Write(idBuf[:]); err != nil {
			return err
		}
	}
	return nil
}

// Load rebuilds a Tree from a bk file written by Write.
func Load(r io.Reader) (*Tree, error) {
	t := New()
	var lenBuf [4]byte
	var idBuf [4]byte
	for {
		_, err := io.ReadFull(r, lenBuf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bktree: reading term length: %w", err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		textBuf := make([]byte, n)
		if _, err := io.ReadFull(r, textBuf); err != nil {
			return nil, fmt.Errorf("bktree: reading term text: %w", err)
		}
		if _, err := io.ReadFull(r, idBuf[:]); err != nil {
			return nil, fmt.Errorf("bktree: reading term id: %w", err)
		}
		t.Insert(string(textBuf), binary.LittleEndian.Uint32(idBuf[:]))
	}
	return t, nil
}
