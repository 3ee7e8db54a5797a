package trie

import (
	"bytes"
	"encoding/binary"
	"testing"

	"nutrie/internal/seq"
	"nutrie/internal/termbuf"
	"nutrie/internal/types"
)

// addTerm populates store's three buffers for termID the way the
// indexer does: one Tfs entry per document holding the cumulative
// position offset *before* that document's positions, one Docs entry
// per document, and one Positions entry per occurrence.
func addTerm(store *termbuf.PostingsStore, termID types.TermId, docs []types.DocId, positions [][]types.Position) {
	var cum uint64
	for i, d := range docs {
		store.Docs.Add(termID, uint64(d))
		store.Tfs.Add(termID, cum)
		for _, p := range positions[i] {
			store.Positions.Add(termID, uint64(p))
		}
		cum += uint64(len(positions[i]))
	}
}

func decodeU64s(b []byte) []uint64 {
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return out
}

func buildTestTrie(t *testing.T, terms []types.Term, store *termbuf.PostingsStore) (*StaticTrie, []uint64, []uint64, []uint64) {
	t.Helper()
	var dictBuf, docsBuf, tfsBuf, posBuf bytes.Buffer

	res, err := Build(types.TermId(len(terms)+1), terms, store, &dictBuf, Encoders{
		Docs:      &docsBuf,
		Tfs:       &tfsBuf,
		Positions: &posBuf,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tr := NewStaticTrie(dictBuf.Bytes(), res.DictSize, res.RootPtr)
	return tr, decodeU64s(docsBuf.Bytes()), decodeU64s(tfsBuf.Bytes()), decodeU64s(posBuf.Bytes())
}

func readOwn(h TrieNodeHeader, docs, tfs, positions []uint64) ([]uint64, []uint64) {
	start, count := OwnPostingsWindow(h)
	return readWindow(start, count, docs, tfs, positions)
}

func readPrefix(h TrieNodeHeader, docs, tfs, positions []uint64) ([]uint64, []uint64, bool) {
	start, count, ok := PrefixPostingsWindow(h)
	if !ok {
		return nil, nil, false
	}
	d, p := readWindow(start, count, docs, tfs, positions)
	return d, p, true
}

// readWindow reads a postings window given its (start, count) bounds,
// decoding each document's delta-encoded position run back into
// absolute values using the per-document boundaries the tfs column
// itself carries.
func readWindow(start, count uint64, docs, tfs, positions []uint64) ([]uint64, []uint64) {
	d := append([]uint64{}, docs[start:start+count]...)
	lo := tfs[start]

	var p []uint64
	for i := uint64(0); i < count; i++ {
		docLo, docHi := tfs[start+i]-lo, tfs[start+i+1]-lo
		dec := seq.NewCumDecoder(seq.New(positions[lo+docLo : lo+docHi]))
		for {
			v, ok := dec.Next()
			if !ok {
				break
			}
			p = append(p, v)
		}
	}
	return d, p
}

func equalU64Slice(a, b []uint64) bool {
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

// TestBuildExactLookupTrivial covers a single-term trie: build, then
// find it back exactly and confirm not-found for anything else.
func TestBuildExactLookupTrivial(t *testing.T) {
	store := termbuf.NewPostingsStore()
	terms := []types.Term{{Text: "cat", TermId: 1}}
	addTerm(store, 1, []types.DocId{5}, [][]types.Position{{0, 3}})

	tr, docs, tfs, positions := buildTestTrie(t, terms, store)

	h, _, ok := tr.FindTerm("cat", false)
	if !ok {
		t.Fatalf("FindTerm(cat) failed")
	}
	if !h.IsWord {
		t.Fatalf("cat should be a word node")
	}
	gotDocs, gotPos := readOwn(h, docs, tfs, positions)
	if !equalU64Slice(gotDocs, []uint64{5}) || !equalU64Slice(gotPos, []uint64{0, 3}) {
		t.Fatalf("cat postings = %v/%v, want [5]/[0 3]", gotDocs, gotPos)
	}

	if _, _, ok := tr.FindTerm("dog", false); ok {
		t.Fatalf("expected not found for dog")
	}
	if _, _, ok := tr.FindTerm("ca", false); ok {
		t.Fatalf("expected exact lookup for partial prefix 'ca' to fail")
	}
	if _, _, ok := tr.FindTerm("ca", true); !ok {
		t.Fatalf("expected prefix lookup for 'ca' to succeed")
	}
}

// TestBuildForkMergesWithoutLosingOwnWord reproduces the auto / automat
// / automobile fork: "auto" is itself a word with its own postings and
// also the ancestor of a synthesized "autom" fork merging automat's and
// automobile's postings. Exact lookup of auto must return only its own
// doc, never the merge (SPEC_FULL.md §4.5 / Testable Property 1).
func TestBuildForkMergesWithoutLosingOwnWord(t *testing.T) {
	store := termbuf.NewPostingsStore()
	terms := []types.Term{
		{Text: "auto", TermId: 1},
		{Text: "automat", TermId: 2},
		{Text: "automobile", TermId: 3},
	}
	addTerm(store, 1, []types.DocId{3}, [][]types.Position{{7}})
	addTerm(store, 2, []types.DocId{1}, [][]types.Position{{1}})
	addTerm(store, 3, []types.DocId{2}, [][]types.Position{{2}})

	tr, docs, tfs, positions := buildTestTrie(t, terms, store)

	autoHdr, _, ok := tr.FindTerm("auto", false)
	if !ok {
		t.Fatalf("exact lookup for auto failed")
	}
	if !autoHdr.IsWord {
		t.Fatalf("auto should be a word node")
	}
	ownDocs, ownPos := readOwn(autoHdr, docs, tfs, positions)
	if !equalU64Slice(ownDocs, []uint64{3}) || !equalU64Slice(ownPos, []uint64{7}) {
		t.Fatalf("auto own postings = %v/%v, want [3]/[7] (must not be the merge)", ownDocs, ownPos)
	}

	forkHdr, _, ok := tr.FindTerm("autom", true)
	if !ok {
		t.Fatalf("prefix lookup for autom failed")
	}
	if forkHdr.IsWord {
		t.Fatalf("autom should be a synthesized fork, not a word")
	}
	mergedDocs, mergedPos, hasPrefix := readPrefix(forkHdr, docs, tfs, positions)
	if !hasPrefix {
		t.Fatalf("autom should carry a prefix-merge window")
	}
	if !equalU64Slice(mergedDocs, []uint64{1, 2}) {
		t.Fatalf("autom merged docs = %v, want [1 2]", mergedDocs)
	}
	if !equalU64Slice(mergedPos, []uint64{1, 2}) {
		t.Fatalf("autom merged positions = %v, want [1 2]", mergedPos)
	}

	automatHdr, _, ok := tr.FindTerm("automat", false)
	if !ok || !automatHdr.IsWord {
		t.Fatalf("exact lookup for automat failed")
	}
	d, p := readOwn(automatHdr, docs, tfs, positions)
	if !equalU64Slice(d, []uint64{1}) || !equalU64Slice(p, []uint64{1}) {
		t.Fatalf("automat postings = %v/%v, want [1]/[1]", d, p)
	}
}

// TestBuildSiblingUnderWordNode covers a word node (auto) that later
// gains a second, unrelated child (autop) alongside its existing fork
// child (autom): exercises the "sibling flush" dispatch branch and
// confirms auto's own postings and its eventual merged prefix both
// stay correct once it, too, gets flushed.
func TestBuildSiblingUnderWordNode(t *testing.T) {
	store := termbuf.NewPostingsStore()
	terms := []types.Term{
		{Text: "auto", TermId: 1},
		{Text: "automat", TermId: 2},
		{Text: "automobile", TermId: 3},
		{Text: "autop", TermId: 4},
	}
	addTerm(store, 1, []types.DocId{3}, [][]types.Position{{7}})
	addTerm(store, 2, []types.DocId{1}, [][]types.Position{{1}})
	addTerm(store, 3, []types.DocId{2}, [][]types.Position{{2}})
	addTerm(store, 4, []types.DocId{9}, [][]types.Position{{4}})

	tr, docs, tfs, positions := buildTestTrie(t, terms, store)

	autopHdr, _, ok := tr.FindTerm("autop", false)
	if !ok || !autopHdr.IsWord {
		t.Fatalf("exact lookup for autop failed")
	}
	d, p := readOwn(autopHdr, docs, tfs, positions)
	if !equalU64Slice(d, []uint64{9}) || !equalU64Slice(p, []uint64{4}) {
		t.Fatalf("autop postings = %v/%v, want [9]/[4]", d, p)
	}

	autoHdr, _, ok := tr.FindTerm("auto", false)
	if !ok {
		t.Fatalf("exact lookup for auto failed")
	}
	ownDocs, _ := readOwn(autoHdr, docs, tfs, positions)
	if !equalU64Slice(ownDocs, []uint64{3}) {
		t.Fatalf("auto own postings = %v, want [3]", ownDocs)
	}

	mergedDocs, _, hasPrefix := readPrefix(autoHdr, docs, tfs, positions)
	if !hasPrefix {
		t.Fatalf("auto should carry a prefix-merge once it has children")
	}
	if !equalU64Slice(mergedDocs, []uint64{1, 2, 9}) {
		t.Fatalf("auto merged docs = %v, want [1 2 9]", mergedDocs)
	}
}
