package bptree

import (
	"relstore/internal/bptpage"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
)

// Iterator walks leaf entries in ascending key order. It holds a shared
// latch on its current leaf for as long as the caller holds the
// iterator, advancing to the next leaf (via the sibling link threaded by
// Leaf.Split) only when the current one is exhausted.
type Iterator struct {
	pool  *buffer.Pool
	guard *buffer.ReadGuard
	leaf  bptpage.Leaf
	idx   int
	done  bool
}

func (t *Tree) descendLeftmost() (*buffer.ReadGuard, error) {
	hg, err := t.pool.FetchPageRead(t.headerPageID)
	if err != nil {
		return nil, err
	}
	rootID := readRoot(hg.Data())
	cur, err := t.pool.FetchPageRead(rootID)
	hg.Drop()
	if err != nil {
		return nil, err
	}
	for bptpage.Kind(cur.Data()) == bptpage.KindInternal {
		childID := bptpage.AsInternal(cur.Data()).ChildAt(0)
		child, err := t.pool.FetchPageRead(childID)
		cur.Drop()
		if err != nil {
			return nil, err
		}
		cur = child
	}
	return cur, nil
}

// Begin returns an iterator positioned at the smallest key in the tree.
func (t *Tree) Begin() (*Iterator, error) {
	cur, err := t.descendLeftmost()
	if err != nil {
		return nil, err
	}
	leaf := bptpage.AsLeaf(cur.Data())
	return &Iterator{pool: t.pool, guard: cur, leaf: leaf, idx: 0, done: leaf.NumKeys() == 0}, nil
}

// BeginAt returns an iterator positioned at the smallest key >= key.
func (t *Tree) BeginAt(key int64) (*Iterator, error) {
	hg, err := t.pool.FetchPageRead(t.headerPageID)
	if err != nil {
		return nil, err
	}
	rootID := readRoot(hg.Data())
	cur, err := t.pool.FetchPageRead(rootID)
	hg.Drop()
	if err != nil {
		return nil, err
	}
	for bptpage.Kind(cur.Data()) == bptpage.KindInternal {
		internal := bptpage.AsInternal(cur.Data())
		childID := internal.ChildAt(internal.FindChildIndex(key))
		child, err := t.pool.FetchPageRead(childID)
		cur.Drop()
		if err != nil {
			return nil, err
		}
		cur = child
	}
	leaf := bptpage.AsLeaf(cur.Data())
	idx, _ := leaf.Search(key)
	it := &Iterator{pool: t.pool, guard: cur, leaf: leaf, idx: idx}
	if idx >= leaf.NumKeys() {
		// every key in this leaf is < key: the first key >= key, if any,
		// is the first entry of the next leaf.
		it.idx = leaf.NumKeys() - 1
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return it, nil
}

// Valid reports whether the iterator currently points at an entry.
func (it *Iterator) Valid() bool {
	return !it.done
}

// Key returns the key at the iterator's current position. Valid must be true.
func (it *Iterator) Key() int64 { return it.leaf.KeyAt(it.idx) }

// RID returns the RID at the iterator's current position. Valid must be true.
func (it *Iterator) RID() bptpage.RID { return it.leaf.RIDAt(it.idx) }

// Next advances to the next entry, crossing into the sibling leaf and
// releasing the exhausted one's latch if needed.
func (it *Iterator) Next() error {
	if it.done {
		return nil
	}
	it.idx++
	if it.idx < it.leaf.NumKeys() {
		return nil
	}

	nextID := it.leaf.NextPageID()
	it.guard.Drop()
	if nextID == diskstore.InvalidPageID {
		it.done = true
		return nil
	}
	g, err := it.pool.FetchPageRead(nextID)
	if err != nil {
		it.done = true
		return err
	}
	it.guard = g
	it.leaf = bptpage.AsLeaf(g.Data())
	it.idx = 0
	if it.leaf.NumKeys() == 0 {
		it.done = true
	}
	return nil
}

// Close releases the iterator's held latch. Safe to call once the
// iterator is already exhausted.
func (it *Iterator) Close() {
	if it.guard != nil {
		it.guard.Drop()
	}
}
