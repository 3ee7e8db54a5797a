package seq

// CumDecoder decodes a delta-encoded stream into running sums: each Next
// call returns the sum of all inner deltas produced so far. It is used to
// decode delta-encoded positions back into absolute token indices.
type CumDecoder struct {
	inner   Sequence
	running uint64
	current uint64
	started bool
}

// NewCumDecoder wraps inner, a stream of deltas, producing absolute values.
func NewCumDecoder(inner Sequence) *CumDecoder {
	return &CumDecoder{inner: inner}
}

func (c *CumDecoder) Remains() int { return c.inner.Remains() }

func (c *CumDecoder) Current() uint64 {
	if !c.started {
		panic("seq: Current called before first advance")
	}
	return c.current
}

func (c *CumDecoder) Next() (uint64, bool) {
	v, ok := c.inner.Next()
	if !ok {
		return 0, false
	}
	c.running += v
	c.current = c.running
	c.started = true
	return c.current, true
}

func (c *CumDecoder) SkipN(n int) (uint64, bool) {
	if n == 0 {
		return c.Current(), c.started
	}
	var v uint64
	var ok bool
	for ; n > 0; n-- {
		v, ok = c.Next()
		if !ok {
			return 0, false
		}
	}
	return v, ok
}

func (c *CumDecoder) SkipTo(target uint64) (int, uint64, bool) {
	skipped := 0
	for {
		v, ok := c.Next()
		if !ok {
			return skipped, 0, false
		}
		skipped++
		if v >= target {
			return skipped, v, true
		}
	}
}

func (c *CumDecoder) Subsequence(start, length int) Sequence {
	return NewCumDecoder(c.inner.Subsequence(start, length))
}
