package table

import (
	"relstore/internal/bptpage"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
	"relstore/internal/tuple"
)

// Iterator yields (Tuple, RID) pairs in physical page/slot order,
// skipping tombstones — the iteration source behind the SeqScan
// executor.
type Iterator struct {
	heap  *Heap
	guard *buffer.ReadGuard
	page  Page
	slot  int
	done  bool
}

// Iterator opens a scan positioned at the first live tuple (or already
// exhausted if there is none).
func (h *Heap) Iterator() (*Iterator, error) {
	id, err := h.headPageID()
	if err != nil {
		return nil, err
	}
	g, err := h.pool.FetchPageScanRead(id)
	if err != nil {
		return nil, err
	}
	it := &Iterator{heap: h, guard: g, page: As(g.Data(), h.slotWidth), slot: -1}
	if err := it.advance(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *Iterator) advance() error {
	for {
		it.slot++
		if it.slot < it.page.NumSlots() {
			if _, ok := it.page.Get(it.slot); ok {
				return nil
			}
			continue
		}
		next := it.page.NextPageID()
		it.guard.Drop()
		if next == diskstore.InvalidPageID {
			it.done = true
			return nil
		}
		g, err := it.heap.pool.FetchPageScanRead(next)
		if err != nil {
			it.done = true
			return err
		}
		it.guard = g
		it.page = As(g.Data(), it.heap.slotWidth)
		it.slot = -1
	}
}

// Valid reports whether the iterator currently points at a live tuple.
func (it *Iterator) Valid() bool { return !it.done }

// Tuple decodes the tuple at the iterator's current position.
func (it *Iterator) Tuple() tuple.Tuple {
	raw, _ := it.page.Get(it.slot)
	return it.heap.schema.Decode(raw)
}

// RID returns the current position's RID.
func (it *Iterator) RID() bptpage.RID {
	return bptpage.RID{PageID: it.page.PageID(), Slot: uint16(it.slot)}
}

// Next advances to the next live tuple.
func (it *Iterator) Next() error { return it.advance() }

// Close releases the iterator's held latch.
func (it *Iterator) Close() {
	if it.guard != nil {
		it.guard.Drop()
	}
}
