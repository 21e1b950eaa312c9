package executor

import (
	"relstore/internal/bptpage"
	"relstore/internal/table"
	"relstore/internal/tuple"
)

// SeqScan yields every live tuple in a table heap, in physical page/slot
// order.
type SeqScan struct {
	heap *table.Heap
	it   *table.Iterator
	err  error
}

// NewSeqScan constructs a scan over heap. Init must be called before Next.
func NewSeqScan(heap *table.Heap) *SeqScan {
	return &SeqScan{heap: heap}
}

func (s *SeqScan) Init() error {
	it, err := s.heap.Iterator()
	if err != nil {
		return err
	}
	s.it = it
	return nil
}

func (s *SeqScan) Next() (tuple.Tuple, bptpage.RID, bool) {
	if s.it == nil || !s.it.Valid() {
		return tuple.Tuple{}, bptpage.RID{}, false
	}
	t := s.it.Tuple()
	rid := s.it.RID()
	if err := s.it.Next(); err != nil {
		s.err = err
	}
	return t, rid, true
}

func (s *SeqScan) Err() error { return s.err }

func (s *SeqScan) Close() {
	if s.it != nil {
		s.it.Close()
	}
}
