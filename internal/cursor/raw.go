package cursor

import (
	"nutrie/internal/types"
)

// RawCursor wraps a single term's Postings columns. It tracks how many
// times Advance/AdvanceTo stepped since the last CatchUp in ahead, and
// uses that to align the tfs column (which trails docs by one element,
// reflecting the cumulative-offsets invariant) before slicing positions.
type RawCursor struct {
	postings Postings
	ahead    int
}

// NewRawCursor primes the tfs sequence (it has one more element than
// docs) by one Next so it trails docs by exactly one element.
func NewRawCursor(postings Postings) *RawCursor {
	postings.Tfs.Next()
	return &RawCursor{postings: postings}
}

func (c *RawCursor) Remains() int { return c.postings.Docs.Remains() }

func (c *RawCursor) Current() types.DocId { return c.postings.Docs.Current() }

func (c *RawCursor) Advance() (types.DocId, bool) {
	c.ahead++
	return c.postings.Docs.Next()
}

func (c *RawCursor) AdvanceTo(target types.DocId) (types.DocId, bool) {
	skipped, v, ok := c.postings.Docs.SkipTo(target)
	c.ahead += skipped
	return v, ok
}

func (c *RawCursor) CatchUp(result *types.VecPostings) int {
	if c.ahead <= 0 {
		panic("cursor: CatchUp called without a preceding Advance")
	}

	startTf, _ := c.postings.Tfs.SkipN(c.ahead - 1)
	nextTf, _ := c.postings.Tfs.Next()
	c.ahead = 0

	tf := nextTf - startTf
	positions := c.postings.Positions.Subsequence(int(startTf), int(tf))
	for {
		p, ok := positions.Next()
		if !ok {
			break
		}
		result.Positions = append(result.Positions, p)
	}
	result.Tfs = append(result.Tfs, tf)
	result.Docs = append(result.Docs, c.postings.Docs.Current())

	return 1
}
