package executor

import (
	"relstore/internal/bptpage"
	"relstore/internal/bptree"
	"relstore/internal/table"
	"relstore/internal/tuple"
)

// KeyFunc projects an index key out of a tuple about to be inserted,
// e.g. picking one integer column.
type KeyFunc func(tuple.Tuple) int64

// Insert consumes a child executor's tuples, appends each to a table
// heap and to every secondary index via its key-projection function,
// and yields a single summary tuple {Integer: count} on its first Next
// call; every subsequent Next reports exhausted.
type Insert struct {
	child   Executor
	heap    *table.Heap
	indexes []*bptree.Tree
	keyFns  []KeyFunc

	done bool
	err  error
}

// NewInsert constructs an Insert executor. indexes and keyFns must be
// parallel slices: keyFns[i] produces the key inserted into indexes[i].
func NewInsert(child Executor, heap *table.Heap, indexes []*bptree.Tree, keyFns []KeyFunc) *Insert {
	return &Insert{child: child, heap: heap, indexes: indexes, keyFns: keyFns}
}

func (ins *Insert) Init() error {
	return ins.child.Init()
}

func (ins *Insert) Next() (tuple.Tuple, bptpage.RID, bool) {
	if ins.done {
		return tuple.Tuple{}, bptpage.RID{}, false
	}
	ins.done = true

	var count int64
	for {
		t, _, ok := ins.child.Next()
		if !ok {
			break
		}
		rid, err := ins.heap.InsertTuple(t)
		if err != nil {
			ins.err = err
			return tuple.Tuple{}, bptpage.RID{}, false
		}
		for i, idx := range ins.indexes {
			if err := idx.Insert(ins.keyFns[i](t), rid); err != nil {
				ins.err = err
				return tuple.Tuple{}, bptpage.RID{}, false
			}
		}
		count++
	}
	if err := ins.child.Err(); err != nil {
		ins.err = err
		return tuple.Tuple{}, bptpage.RID{}, false
	}

	summary := tuple.Tuple{Values: []tuple.Value{tuple.Int(count)}}
	return summary, bptpage.RID{}, true
}

func (ins *Insert) Err() error { return ins.err }

func (ins *Insert) Close() {
	ins.child.Close()
}
