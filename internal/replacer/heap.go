package replacer

import "container/heap"

// kHeap is a container/heap min-heap of *node ordered by ascending
// front() — the oldest timestamp in the node's bounded history. For the
// <k heap that is literally the frame's first-ever access (earliest wins,
// per the tie-break rule). For the ==k heap, front() is the window's
// oldest entry, i.e. the k-th most recent access, so smallest front()
// is equivalent to largest backward k-distance for a fixed "now".
//
// Each node caches its own index in whichever kHeap currently holds it
// (node.heapIdx), set by Swap/Push/Pop, so the replacer can call
// heap.Fix/removeAt in O(log n) instead of scanning for the node.
type kHeap struct {
	tag   heapTag
	items []*node
}

func (h *kHeap) Len() int { return len(h.items) }

func (h *kHeap) Less(i, j int) bool {
	fi, _ := h.items[i].hist.front()
	fj, _ := h.items[j].hist.front()
	if fi != fj {
		return fi < fj
	}
	// Deterministic tie-break when two frames share a front() timestamp
	// (cannot happen under a strictly increasing clock in practice, but
	// keeps ordering total).
	return h.items[i].frameID < h.items[j].frameID
}

func (h *kHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].heapIdx = i
	h.items[j].heapIdx = j
}

func (h *kHeap) Push(x any) {
	n := x.(*node)
	n.inHeap = h.tag
	n.heapIdx = len(h.items)
	h.items = append(h.items, n)
}

func (h *kHeap) Pop() any {
	old := h.items
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	h.items = old[:last]
	n.inHeap = heapNone
	n.heapIdx = -1
	return n
}

// removeAt removes the node currently at heap index idx, wherever it sits
// in the underlying slice, via the standard swap-with-last-then-fix trick.
func (h *kHeap) removeAt(idx int) {
	last := len(h.items) - 1
	if idx != last {
		h.items[idx], h.items[last] = h.items[last], h.items[idx]
		h.items[idx].heapIdx = idx
	}
	removed := h.items[last]
	h.items[last] = nil
	h.items = h.items[:last]
	removed.inHeap = heapNone
	removed.heapIdx = -1

	if idx < len(h.items) {
		heap.Fix(h, idx)
	}
}
