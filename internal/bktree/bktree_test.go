package bktree

import (
	"bytes"
	"sort"
	"testing"

	"nutrie/internal/types"
)

func TestFindWithinDistanceExactAndNear(t *testing.T) {
	tr := New()
	tr.Insert("cat", 1)
	tr.Insert("cats", 2)
	tr.Insert("car", 3)
	tr.Insert("dog", 4)

	got := tr.FindWithinDistance("cat", 1)
	var terms []string
	for _, m := range got {
		terms = append(terms, m.Term)
	}
	sort.Strings(terms)
	want := []string{"car", "cat", "cats"}
	if len(terms) != len(want) {
		t.Fatalf("FindWithinDistance(cat,1) = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Fatalf("FindWithinDistance(cat,1) = %v, want %v", terms, want)
		}
	}
}

func TestFindWithinDistanceExcludesFarTerms(t *testing.T) {
	tr := New()
	tr.Insert("cat", 1)
	tr.Insert("dog", 2)

	got := tr.FindWithinDistance("cat", 1)
	for _, m := range got {
		if m.Term == "dog" {
			t.Fatalf("dog should not be within distance 1 of cat")
		}
	}
}

func TestSize(t *testing.T) {
	tr := New()
	if tr.Size() != 0 {
		t.Fatalf("new tree size = %d, want 0", tr.Size())
	}
	tr.Insert("a", 1)
	tr.Insert("b", 2)
	if tr.Size() != 2 {
		t.Fatalf("tree size = %d, want 2", tr.Size())
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	terms := []types.Term{
		{Text: "auto", TermId: 1},
		{Text: "automat", TermId: 2},
		{Text: "automobile", TermId: 3},
	}

	var buf bytes.Buffer
	if err := Write(&buf, terms); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != len(terms) {
		t.Fatalf("loaded size = %d, want %d", loaded.Size(), len(terms))
	}

	got := loaded.FindWithinDistance("automat", 0)
	if len(got) != 1 || got[0].Term != "automat" || got[0].TermID != 2 {
		t.Fatalf("FindWithinDistance(automat,0) on loaded tree = %v", got)
	}
}
