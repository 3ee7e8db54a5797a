package seq

// AscendingEncoder and AscendingDecoder compress an ascending-sorted
// sequence by adding/subtracting a running index: encoding subtracts the
// element's position in the stream, decoding adds it back. Not applied to
// the docs column in this version (trie.writePostings writes it as
// absolute ids), but available for any ascending column that benefits
// from it.
type ascending struct {
	inner    Sequence
	position uint64
	current  uint64
	started  bool
}

func newAscending(startPosition int, inner Sequence) ascending {
	return ascending{inner: inner, position: uint64(startPosition)}
}

func (a *ascending) step(encode bool) (uint64, bool) {
	v, ok := a.inner.Next()
	if !ok {
		return 0, false
	}
	if encode {
		a.current = v - a.position
	} else {
		a.current = v + a.position
	}
	a.position++
	a.started = true
	return a.current, true
}

func (a *ascending) Remains() int { return a.inner.Remains() }

func (a *ascending) Current() uint64 {
	if !a.started {
		panic("seq: Current called before first advance")
	}
	return a.current
}

// AscendingEncoder: Next() == absolute - running index.
type AscendingEncoder struct{ ascending }

func NewAscendingEncoder(startPosition int, inner Sequence) *AscendingEncoder {
	return &AscendingEncoder{newAscending(startPosition, inner)}
}

func (e *AscendingEncoder) Next() (uint64, bool) { return e.step(true) }

func (e *AscendingEncoder) SkipN(n int) (uint64, bool) {
	if n == 0 {
		return e.Current(), e.started
	}
	var v uint64
	var ok bool
	for ; n > 0; n-- {
		if v, ok = e.Next(); !ok {
			return 0, false
		}
	}
	return v, ok
}

func (e *AscendingEncoder) SkipTo(target uint64) (int, uint64, bool) {
	skipped := 0
	for {
		v, ok := e.Next()
		if !ok {
			return skipped, 0, false
		}
		skipped++
		if v >= target {
			return skipped, v, true
		}
	}
}

func (e *AscendingEncoder) Subsequence(start, length int) Sequence {
	return NewAscendingEncoder(int(e.position)+start, e.inner.Subsequence(start, length))
}

// AscendingDecoder: Next() == delta + running index.
type AscendingDecoder struct{ ascending }

func NewAscendingDecoder(startPosition int, inner Sequence) *AscendingDecoder {
	return &AscendingDecoder{newAscending(startPosition, inner)}
}

func (d *AscendingDecoder) Next() (uint64, bool) { return d.step(false) }

func (d *AscendingDecoder) SkipN(n int) (uint64, bool) {
	if n == 0 {
		return d.Current(), d.started
	}
	var v uint64
	var ok bool
	for ; n > 0; n-- {
		if v, ok = d.Next(); !ok {
			return 0, false
		}
	}
	return v, ok
}

func (d *AscendingDecoder) SkipTo(target uint64) (int, uint64, bool) {
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

func (d *AscendingDecoder) Subsequence(start, length int) Sequence {
	return NewAscendingDecoder(int(d.position)+start, d.inner.Subsequence(start, length))
}
