package seq

// DeltaEncoder turns an ascending absolute stream into successive
// differences: the first value is passed through unchanged, every value
// after that is the difference from the previous absolute value. Used at
// encode time to delta-encode a document's positions before they are
// written to disk.
type DeltaEncoder struct {
	inner   Sequence
	prevAbs uint64
	current uint64
	started bool
}

// NewDeltaEncoder wraps inner, a stream of absolute ascending values.
func NewDeltaEncoder(inner Sequence) *DeltaEncoder {
	return &DeltaEncoder{inner: inner}
}

func (d *DeltaEncoder) Remains() int { return d.inner.Remains() }

func (d *DeltaEncoder) Current() uint64 {
	if !d.started {
		panic("seq: Current called before first advance")
	}
	return d.current
}

func (d *DeltaEncoder) Next() (uint64, bool) {
	abs, ok := d.inner.Next()
	if !ok {
		return 0, false
	}
	d.current = abs - d.prevAbs
	d.prevAbs = abs
	d.started = true
	return d.current, true
}

func (d *DeltaEncoder) SkipN(n int) (uint64, bool) {
	if n == 0 {
		return d.Current(), d.started
	}
	var v uint64
	var ok bool
	for ; n > 0; n-- {
		v, ok = d.Next()
		if !ok {
			return 0, false
		}
	}
	return v, ok
}

func (d *DeltaEncoder) SkipTo(target uint64) (int, uint64, bool) {
	skipped := 0
	for {
		v, ok := d.Next()
		if !ok {
			return skipped, 0, false
		}
		skipped++
		if v >= target {
			return skipped, v, true
		}
	}
}

func (d *DeltaEncoder) Subsequence(start, length int) Sequence {
	return NewDeltaEncoder(d.inner.Subsequence(start, length))
}
