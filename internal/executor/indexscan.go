package executor

import (
	"relstore/internal/bptpage"
	"relstore/internal/bptree"
	"relstore/internal/table"
	"relstore/internal/tuple"
)

// IndexScan yields tuples in index key order starting at startKey,
// looking each matching RID up in the table heap, and stopping once a
// key exceeds an optional upper bound.
type IndexScan struct {
	tree     *bptree.Tree
	heap     *table.Heap
	startKey int64
	hasUpper bool
	upperKey int64

	it  *bptree.Iterator
	err error
}

// NewIndexScan constructs a scan over tree starting at startKey. Init
// must be called before Next.
func NewIndexScan(tree *bptree.Tree, heap *table.Heap, startKey int64) *IndexScan {
	return &IndexScan{tree: tree, heap: heap, startKey: startKey}
}

// WithUpperBound ends the scan at the first key greater than key,
// inclusive of key itself.
func (s *IndexScan) WithUpperBound(key int64) *IndexScan {
	s.hasUpper = true
	s.upperKey = key
	return s
}

func (s *IndexScan) Init() error {
	it, err := s.tree.BeginAt(s.startKey)
	if err != nil {
		return err
	}
	s.it = it
	return nil
}

func (s *IndexScan) Next() (tuple.Tuple, bptpage.RID, bool) {
	for s.it != nil && s.it.Valid() {
		if s.hasUpper && s.it.Key() > s.upperKey {
			return tuple.Tuple{}, bptpage.RID{}, false
		}
		rid := s.it.RID()
		t, ok, err := s.heap.GetTuple(rid)
		if err != nil {
			s.err = err
			return tuple.Tuple{}, bptpage.RID{}, false
		}
		if err := s.it.Next(); err != nil {
			s.err = err
			return tuple.Tuple{}, bptpage.RID{}, false
		}
		if ok {
			return t, rid, true
		}
		// the index still points at a tuple a concurrent delete has
		// since tombstoned; skip it and keep scanning.
	}
	return tuple.Tuple{}, bptpage.RID{}, false
}

func (s *IndexScan) Err() error { return s.err }

func (s *IndexScan) Close() {
	if s.it != nil {
		s.it.Close()
	}
}
