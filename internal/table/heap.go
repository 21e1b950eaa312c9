package table

import (
	"fmt"

	"relstore/internal/bptpage"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
	"relstore/internal/tuple"
)

// Heap is a table heap: a singly-linked chain of fixed-slot pages
// holding tuples of one schema, plus a head pointer page recording
// where the chain currently starts.
type Heap struct {
	pool      *buffer.Pool
	schema    tuple.Schema
	slotWidth int
	headPtrID diskstore.PageID
}

// Bootstrap allocates a head pointer page and an initial (empty) heap
// page, wiring the two together, for a brand new table.
func Bootstrap(pool *buffer.Pool, schema tuple.Schema) (*Heap, error) {
	ptrGuard, err := pool.NewPage()
	if err != nil {
		return nil, fmt.Errorf("table: allocate head pointer page: %w", err)
	}
	headGuard, err := pool.NewPage()
	if err != nil {
		ptrGuard.Drop()
		return nil, fmt.Errorf("table: allocate head page: %w", err)
	}

	slotWidth := schema.Width()
	Init(headGuard.Data(), headGuard.PageID(), slotWidth)
	headGuard.MarkDirty()
	writeHeadPageID(ptrGuard.Data(), headGuard.PageID())
	ptrGuard.MarkDirty()

	h := &Heap{pool: pool, schema: schema, slotWidth: slotWidth, headPtrID: ptrGuard.PageID()}
	headGuard.Drop()
	ptrGuard.Drop()
	return h, nil
}

// Open reopens an existing table heap given its head pointer page id.
func Open(pool *buffer.Pool, headPtrID diskstore.PageID, schema tuple.Schema) *Heap {
	return &Heap{pool: pool, schema: schema, slotWidth: schema.Width(), headPtrID: headPtrID}
}

// HeadPointerPageID returns the page id callers should persist (e.g. in
// a catalog) to reopen this heap later.
func (h *Heap) HeadPointerPageID() diskstore.PageID { return h.headPtrID }

func (h *Heap) headPageID() (diskstore.PageID, error) {
	g, err := h.pool.FetchPageRead(h.headPtrID)
	if err != nil {
		return diskstore.InvalidPageID, err
	}
	id := readHeadPageID(g.Data())
	g.Drop()
	return id, nil
}

// InsertTuple appends t to the first page with a free slot, scanning the
// chain from the head page forward and appending a fresh page at the
// tail if none has room, returning the tuple's new RID.
func (h *Heap) InsertTuple(t tuple.Tuple) (bptpage.RID, error) {
	raw := make([]byte, h.slotWidth)
	h.schema.Encode(t, raw)

	curID, err := h.headPageID()
	if err != nil {
		return bptpage.RID{}, err
	}

	var tailGuard *buffer.WriteGuard
	for {
		g, err := h.pool.FetchPageWrite(curID)
		if err != nil {
			return bptpage.RID{}, err
		}
		p := As(g.Data(), h.slotWidth)
		if slot, ok := p.Insert(raw); ok {
			g.MarkDirty()
			g.Drop()
			return bptpage.RID{PageID: curID, Slot: uint16(slot)}, nil
		}
		next := p.NextPageID()
		if next == diskstore.InvalidPageID {
			tailGuard = g
			break
		}
		g.Drop()
		curID = next
	}

	newGuard, err := h.pool.NewPage()
	if err != nil {
		tailGuard.Drop()
		return bptpage.RID{}, fmt.Errorf("table: allocate heap page: %w", err)
	}
	Init(newGuard.Data(), newGuard.PageID(), h.slotWidth)
	np := As(newGuard.Data(), h.slotWidth)
	slot, ok := np.Insert(raw)
	if !ok {
		tailGuard.Drop()
		newGuard.Drop()
		return bptpage.RID{}, fmt.Errorf("table: fresh page cannot hold a tuple of width %d", h.slotWidth)
	}
	newGuard.MarkDirty()

	tailPage := As(tailGuard.Data(), h.slotWidth)
	tailPage.SetNextPageID(newGuard.PageID())
	tailGuard.MarkDirty()
	tailGuard.Drop()
	newGuard.Drop()

	return bptpage.RID{PageID: newGuard.PageID(), Slot: uint16(slot)}, nil
}

// GetTuple returns the tuple at rid, reporting false if the slot is
// tombstoned or out of range.
func (h *Heap) GetTuple(rid bptpage.RID) (tuple.Tuple, bool, error) {
	g, err := h.pool.FetchPageRead(rid.PageID)
	if err != nil {
		return tuple.Tuple{}, false, err
	}
	defer g.Drop()
	p := As(g.Data(), h.slotWidth)
	raw, ok := p.Get(int(rid.Slot))
	if !ok {
		return tuple.Tuple{}, false, nil
	}
	return h.schema.Decode(raw), true, nil
}

// DeleteTuple tombstones rid's slot. This is a logical delete only — no
// physical compaction — matching the engine's no-redo/undo assumption.
func (h *Heap) DeleteTuple(rid bptpage.RID) (bool, error) {
	g, err := h.pool.FetchPageWrite(rid.PageID)
	if err != nil {
		return false, err
	}
	defer g.Drop()
	p := As(g.Data(), h.slotWidth)
	ok := p.Delete(int(rid.Slot))
	if ok {
		g.MarkDirty()
	}
	return ok, nil
}
