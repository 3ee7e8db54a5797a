package seq

import "testing"

func TestSliceSequenceSkip(t *testing.T) {
	docs := []uint64{5, 7, 9, 11, 15, 17, 50, 90}
	s := New(docs)
	if v, ok := s.Next(); !ok || v != 5 {
		t.Fatalf("Next() = %v, %v, want 5, true", v, ok)
	}

	cases := []struct {
		target          uint64
		wantSkipped     int
		wantVal         uint64
		wantOk          bool
	}{
		{9, 2, 9, true},
		{12, 2, 15, true},
		{17, 1, 17, true},
		{30, 1, 50, true},
		{60, 1, 90, true},
		{100, 0, 0, false},
	}
	for _, c := range cases {
		skipped, v, ok := s.SkipTo(c.target)
		if skipped != c.wantSkipped || v != c.wantVal || ok != c.wantOk {
			t.Fatalf("SkipTo(%d) = (%d,%d,%v), want (%d,%d,%v)", c.target, skipped, v, ok, c.wantSkipped, c.wantVal, c.wantOk)
		}
	}
}

func TestSliceSubsequenceSkip(t *testing.T) {
	docs := []uint64{5, 7, 9, 11, 15, 17, 50, 90, 120, 2000, 2001}
	s := New(docs)
	sub := s.Subsequence(2, 6)

	if v, ok := sub.Next(); !ok || v != 9 {
		t.Fatalf("Next() = %v,%v want 9,true", v, ok)
	}
	if skipped, v, ok := sub.SkipTo(11); skipped != 1 || v != 11 || !ok {
		t.Fatalf("SkipTo(11) = %d,%d,%v", skipped, v, ok)
	}
	if skipped, v, ok := sub.SkipTo(17); skipped != 2 || v != 17 || !ok {
		t.Fatalf("SkipTo(17) = %d,%d,%v", skipped, v, ok)
	}
	if skipped, v, ok := sub.SkipTo(30); skipped != 1 || v != 50 || !ok {
		t.Fatalf("SkipTo(30) = %d,%d,%v", skipped, v, ok)
	}
}

func TestSliceSequenceSkipN(t *testing.T) {
	docs := []uint64{5, 7, 9, 11, 15, 17, 50, 90, 120, 2000, 2001}
	s := New(docs)

	mustNext := func(want uint64) {
		t.Helper()
		v, ok := s.Next()
		if !ok || v != want {
			t.Fatalf("Next() = %v,%v want %v,true", v, ok, want)
		}
	}
	mustSkipN := func(n int, want uint64) {
		t.Helper()
		v, ok := s.SkipN(n)
		if !ok || v != want {
			t.Fatalf("SkipN(%d) = %v,%v want %v,true", n, v, ok, want)
		}
	}

	mustNext(5)
	mustNext(7)
	mustSkipN(0, 7)
	mustSkipN(0, 7)
	mustSkipN(1, 9)
	mustSkipN(0, 9)
	mustSkipN(1, 11)
	mustSkipN(1, 15)
	mustSkipN(1, 17)
	mustSkipN(2, 90)
	mustSkipN(1, 120)
	mustSkipN(1, 2000)

	if _, ok := s.SkipN(2); ok {
		t.Fatalf("SkipN(2) at end should report ok=false")
	}
}

func TestCumDecoderRoundTripsDeltaEncoder(t *testing.T) {
	positions := []uint64{3, 5, 6, 20}
	delta := NewDeltaEncoder(New(positions))
	deltas := ToSlice(delta)

	cum := NewCumDecoder(New(deltas))
	got := ToSlice(cum)

	if len(got) != len(positions) {
		t.Fatalf("got %v, want %v", got, positions)
	}
	for i := range positions {
		if got[i] != positions[i] {
			t.Fatalf("got %v, want %v", got, positions)
		}
	}
}

func TestAscendingRoundTrip(t *testing.T) {
	docs := []uint64{1, 2, 4, 9, 20}
	enc := NewAscendingEncoder(0, New(docs))
	encoded := ToSlice(enc)

	dec := NewAscendingDecoder(0, New(encoded))
	got := ToSlice(dec)

	for i := range docs {
		if got[i] != docs[i] {
			t.Fatalf("got %v, want %v", got, docs)
		}
	}
}
