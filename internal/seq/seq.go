// Package seq implements the lazy, single-pass integer-stream contract
// used throughout the postings pipeline: a uniform Sequence interface
// with random skip, subranging, and encoding adapters on top of it.
package seq

// Sequence is a stateful, forward-only cursor over a finite stream of
// uint64s. The zero value of a concrete implementation is never valid;
// construct one with New or a decorator constructor below.
//
// Before the first call to Next/SkipN/SkipTo, Current is undefined.
type Sequence interface {
	// Remains reports how many elements have not yet been produced,
	// excluding the current one.
	Remains() int

	// Current returns the value the cursor currently sits on. It is
	// undefined before the first successful advance.
	Current() uint64

	// Next advances the cursor by one and returns the new current value,
	// or ok=false if the stream is exhausted.
	Next() (value uint64, ok bool)

	// SkipN advances by n and returns the new current value. SkipN(0)
	// returns the current value without advancing.
	SkipN(n int) (value uint64, ok bool)

	// SkipTo advances until Current >= target, returning how many
	// elements were consumed and the value landed on.
	SkipTo(target uint64) (skipped int, value uint64, ok bool)

	// Subsequence returns a new cursor over the half-open window
	// [start, start+length) of the underlying storage, positioned
	// before its first element.
	Subsequence(start, length int) Sequence
}

// ToSlice drains seq into a newly allocated slice.
func ToSlice(s Sequence) []uint64 {
	out := make([]uint64, 0, s.Remains())
	for {
		v, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// SliceSequence is the base Sequence implementation: a plain window over
// an in-memory or memory-mapped []uint64.
type SliceSequence struct {
	data     []uint64
	position int // number of elements produced so far
}

// New wraps data as a Sequence positioned before its first element.
func New(data []uint64) *SliceSequence {
	return &SliceSequence{data: data}
}

func (s *SliceSequence) at() (uint64, bool) {
	if s.position > 0 && s.position <= len(s.data) {
		return s.data[s.position-1], true
	}
	return 0, false
}

func (s *SliceSequence) Remains() int {
	return len(s.data) - s.position
}

func (s *SliceSequence) Current() uint64 {
	v, ok := s.at()
	if !ok {
		panic("seq: Current called before first advance or past end")
	}
	return v
}

func (s *SliceSequence) Next() (uint64, bool) {
	s.position++
	return s.at()
}

func (s *SliceSequence) SkipN(n int) (uint64, bool) {
	if n == 0 {
		return s.at()
	}
	s.position += n
	return s.at()
}

func (s *SliceSequence) SkipTo(target uint64) (int, uint64, bool) {
	skipped := 0
	for {
		v, ok := s.Next()
		if !ok {
			return skipped, 0, false
		}
		skipped++
		if v >= target {
			return skipped, v, true
		}
	}
}

func (s *SliceSequence) Subsequence(start, length int) Sequence {
	end := start + length
	if end > len(s.data) {
		end = len(s.data)
	}
	return New(s.data[start:end])
}
