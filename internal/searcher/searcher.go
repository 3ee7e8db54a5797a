// Package searcher implements the query-time driver: opening a built
// index, resolving query tokens through the trie, wrapping their
// postings windows as cursors, and running a leap-frog DAAT
// intersection across them.
package searcher

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nutrie/internal/bktree"
	"nutrie/internal/cursor"
	"nutrie/internal/seq"
	"nutrie/internal/trie"
	"nutrie/internal/types"
)

// fuzzyMaxDistance is the edit distance search -fuzzy suggests within.
const fuzzyMaxDistance = 2

const metaSize = 48

// Searcher holds an opened index's four mapped columns in memory and
// the vocabulary trie built over them. It is read-only and safe for
// concurrent queries.
type Searcher struct {
	log *slog.Logger

	trie *trie.StaticTrie

	docs      []uint64
	tfs       []uint64
	positions []uint64

	// bk is nil when no bk file was found alongside the index; fuzzy
	// lookups simply report no suggestions in that case.
	bk *bktree.Tree
}

// Match is one document that satisfied a query: its id, the summed term
// frequency across every query term, and the concatenated, decoded
// positions of every term that hit it.
type Match struct {
	Doc       types.DocId
	Tf        uint64
	Positions []types.Position
}

// Open reads an index directory's five files (meta, dict, docs, tfs,
// positions) fully into memory and builds a Searcher over them.
func Open(log *slog.Logger, indexDir string) (*Searcher, error) {
	const op = "searcher.Open"

	metaBuf, err := os.ReadFile(filepath.Join(indexDir, "meta"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(metaBuf) < metaSize {
		return nil, fmt.Errorf("%s: malformed meta file: %d bytes, want %d", op, len(metaBuf), metaSize)
	}
	dictSize := binary.LittleEndian.Uint64(metaBuf[0:8])
	rootPtr := binary.LittleEndian.Uint64(metaBuf[8:16])

	dictBuf, err := os.ReadFile(filepath.Join(indexDir, "dict"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if uint64(len(dictBuf)) < dictSize {
		return nil, fmt.Errorf("%s: malformed index: dict file shorter than dict_size", op)
	}

	docs, err := readU64File(filepath.Join(indexDir, "docs"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tfs, err := readU64File(filepath.Join(indexDir, "tfs"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	positions, err := readU64File(filepath.Join(indexDir, "positions"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var bk *bktree.Tree
	if bkFile, err := os.Open(filepath.Join(indexDir, "bk")); err == nil {
		bk, err = bktree.Load(bkFile)
		bkFile.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("searcher: index opened", "dir", indexDir, "dict_size", dictSize, "docs", len(docs))

	return &Searcher{
		log:       log,
		trie:      trie.NewStaticTrie(dictBuf, dictSize, rootPtr),
		docs:      docs,
		tfs:       tfs,
		positions: positions,
		bk:        bk,
	}, nil
}

// FuzzySuggest returns terms within fuzzyMaxDistance edits of term, used
// by search -fuzzy when an exact/prefix lookup misses. It never
// participates in AND-intersection. Returns nil, not an error, if the
// index was built without a bk file.
func (s *Searcher) FuzzySuggest(term string) []bktree.Match {
	if s.bk == nil {
		return nil
	}
	return s.bk.FindWithinDistance(term, fuzzyMaxDistance)
}

func readU64File(path string) ([]uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("malformed column file %s: length %d not a multiple of 8", path, len(raw))
	}
	out := make([]uint64, len(raw)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return out, nil
}

// rawCursor builds a RawCursor over the (start, count) window in the
// global docs/tfs/positions columns. Positions are wrapped in a
// CumDecoder over the whole column: a node's own tfs entries are
// already absolute offsets into that column (the on-disk tfs stream is
// one seamless cumulative sequence across every flushed node), so
// CatchUp's per-document Subsequence calls land on the right absolute
// range and each get their own freshly-reset decoder (matching the
// per-document delta encoding at build time).
func (s *Searcher) rawCursor(start, count uint64) *cursor.RawCursor {
	docsWindow := seq.New(s.docs).Subsequence(int(start), int(count))
	tfsWindow := seq.New(s.tfs).Subsequence(int(start), int(count)+1)
	positionsAll := seq.NewCumDecoder(seq.New(s.positions))

	return cursor.NewRawCursor(cursor.Postings{
		Docs:      docsWindow,
		Tfs:       tfsWindow,
		Positions: positionsAll,
	})
}

// Search resolves every query token via the trie (exact match unless
// allowPrefix), builds a cursor per resolved term, and intersects them.
// With allowPrefix, a token resolving to a node with a prefix-merge
// window reads that window, combined with the node's own postings when
// the node is also a word. A miss on any token yields an empty,
// non-error result — "not found" is not a failure.
func (s *Searcher) Search(terms []string, allowPrefix bool) ([]Match, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("searcher: empty query")
	}

	cursors := make([]cursor.Cursor, 0, len(terms))
	for _, term := range terms {
		h, _, ok := s.trie.FindTerm(term, allowPrefix)
		if !ok {
			return nil, nil
		}

		start, count := trie.OwnPostingsWindow(h)
		if allowPrefix {
			if pStart, pCount, hasPrefix := trie.PrefixPostingsWindow(h); hasPrefix {
				if count > 0 {
					// a word node with children: its own postings join
					// the duplicate-free merge of its children's.
					cursors = append(cursors, cursor.NewMergeWithoutDuplicates([]cursor.Cursor{
						s.rawCursor(start, count), s.rawCursor(pStart, pCount),
					}))
					continue
				}
				start, count = pStart, pCount
			}
		}

		if count == 0 {
			return nil, nil
		}
		cursors = append(cursors, s.rawCursor(start, count))
	}

	sortCursorsByRemains(cursors)

	x := cursor.NewIntersect(cursors)
	result := cursor.Collect(x)

	matches := make([]Match, 0, result.NumDocs())
	var offset uint64
	for i, doc := range result.Docs {
		tf := result.Tfs[i]
		matches = append(matches, Match{
			Doc:       doc,
			Tf:        tf,
			Positions: result.Positions[offset : offset+tf],
		})
		offset += tf
	}
	return matches, nil
}

func sortCursorsByRemains(cursors []cursor.Cursor) {
	for i := 1; i < len(cursors); i++ {
		for j := i; j > 0 && cursors[j].Remains() < cursors[j-1].Remains(); j-- {
			cursors[j], cursors[j-1] = cursors[j-1], cursors[j]
		}
	}
}
