package termbuf

import "testing"

func TestTermBufferTakeOnce(t *testing.T) {
	b := New()
	b.Add(3, 10)
	b.Add(3, 20)

	vals, ok := b.Take(3)
	if !ok || len(vals) != 2 || vals[0] != 10 || vals[1] != 20 {
		t.Fatalf("Take(3) = %v,%v", vals, ok)
	}

	if _, ok := b.Take(3); ok {
		t.Fatalf("second Take(3) should fail")
	}
}

func TestTermBufferGaps(t *testing.T) {
	b := New()
	b.Add(5, 1)
	if _, ok := b.Take(2); ok {
		t.Fatalf("Take(2) on untouched slot should fail")
	}
	vals, ok := b.Take(5)
	if !ok || len(vals) != 1 {
		t.Fatalf("Take(5) = %v,%v", vals, ok)
	}
}

func TestPostingsStoreSentinel(t *testing.T) {
	s := NewPostingsStore()
	s.Docs.Add(1, 7)
	s.Tfs.Add(1, 0)
	s.Positions.Add(1, 100)
	s.Positions.Add(1, 101)

	p, ok := s.GetPostings(1)
	if !ok {
		t.Fatalf("GetPostings(1) missing")
	}
	if len(p.Tfs) != len(p.Docs)+1 {
		t.Fatalf("tfs length %d, want %d", len(p.Tfs), len(p.Docs)+1)
	}
	if p.Tfs[len(p.Tfs)-1] != uint64(len(p.Positions)) {
		t.Fatalf("trailing tfs sentinel = %d, want %d", p.Tfs[len(p.Tfs)-1], len(p.Positions))
	}
}
