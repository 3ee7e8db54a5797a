package cursor

import "nutrie/internal/types"

// heapItem pairs a cursor with its cached current doc id, so the heap
// can order cursors without calling into the cursor on every comparison.
type heapItem struct {
	doc types.DocId
	cur Cursor
}

// cursorHeap is a container/heap.Interface min-heap of heapItems, keyed
// ascending by doc id (so the smallest current doc is always the root).
type cursorHeap []*heapItem

func (h cursorHeap) Len() int            { return len(h) }
func (h cursorHeap) Less(i, j int) bool  { return h[i].doc < h[j].doc }
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// keepUnique returns the distinct values of a sorted slice, preserving
// order.
func keepUnique(xs []types.Position) []types.Position {
	if len(xs) == 0 {
		return nil
	}
	res := make([]types.Position, 0, len(xs))
	group := xs[0]
	for _, x := range xs[1:] {
		if x != group {
			res = append(res, group)
			group = x
		}
	}
	res = append(res, group)
	return res
}
