// Package relstore wires the buffer pool, B+Tree index, table heap and
// pull-based executors into a single entry point: an Engine opened on a
// disk file, with an in-memory catalog of tables and their indexes.
//
// Grounded on the teacher's top-level db.go, which wired a store, a
// cache/pager and a freelist behind one Open/Close entry point configured
// by functional options; the catalog here stays in-memory only (no
// catalog persistence beyond a table directory), per scope.
package relstore

import (
	"fmt"
	"sync"

	"relstore/internal/bptree"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
	"relstore/internal/executor"
	"relstore/internal/logmanager"
	"relstore/internal/table"
	"relstore/internal/tuple"
)

// index pairs a secondary B+Tree index with the function that projects
// its key out of a tuple about to be inserted.
type index struct {
	tree   *bptree.Tree
	keyFn  executor.KeyFunc
	column int
}

// tableEntry is the catalog's record for one table: its heap and every
// index registered against it.
type tableEntry struct {
	heap    *table.Heap
	schema  tuple.Schema
	indexes []*index
}

// Engine is an open database file plus its in-memory table catalog. The
// zero value is not valid; construct one with Open.
type Engine struct {
	mu sync.Mutex

	disk *diskstore.Store
	pool *buffer.Pool
	log  *logmanager.Manager
	opts *Options

	tables map[string]*tableEntry
}

// Open opens (creating if necessary) the database file at path and
// returns a ready Engine. Callers must call Close when done.
func Open(path string, opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	disk, err := diskstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("relstore: open disk store: %w", err)
	}
	lm := logmanager.New()
	pool := buffer.New(o.PoolSize, o.ReplacerK, disk, lm)

	return &Engine{
		disk:   disk,
		pool:   pool,
		log:    lm,
		opts:   o,
		tables: make(map[string]*tableEntry),
	}, nil
}

// Close flushes every dirty page and closes the underlying disk file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.pool.FlushAllPages(); err != nil {
		return fmt.Errorf("relstore: flush on close: %w", err)
	}
	return e.disk.Close()
}

// CreateTable registers a new table with the given schema and bootstraps
// a fresh table heap for it. The name must not already be in use.
func (e *Engine) CreateTable(name string, schema tuple.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.tables[name]; ok {
		return ErrTableExists
	}
	heap, err := table.Bootstrap(e.pool, schema)
	if err != nil {
		return fmt.Errorf("relstore: create table %q: %w", name, err)
	}
	e.tables[name] = &tableEntry{heap: heap, schema: schema}
	e.opts.Logger.Info("table created", "name", name)
	return nil
}

// CreateIndex registers a new B+Tree secondary index over table, keyed by
// the integer value at the given column position.
func (e *Engine) CreateIndex(tableName string, column int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tables[tableName]
	if !ok {
		return ErrTableNotFound
	}
	tree, err := bptree.Bootstrap(e.pool)
	if err != nil {
		return fmt.Errorf("relstore: create index on %q: %w", tableName, err)
	}
	keyFn := func(tup tuple.Tuple) int64 { return tup.Values[column].Integer }
	t.indexes = append(t.indexes, &index{tree: tree, keyFn: keyFn, column: column})
	e.opts.Logger.Info("index created", "table", tableName, "column", column)
	return nil
}

// InsertExecutor returns an Insert executor over table, consuming child
// and writing through to the table heap and every registered index.
func (e *Engine) InsertExecutor(tableName string, child executor.Executor) (*executor.Insert, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tables[tableName]
	if !ok {
		return nil, ErrTableNotFound
	}
	trees := make([]*bptree.Tree, len(t.indexes))
	keyFns := make([]executor.KeyFunc, len(t.indexes))
	for i, idx := range t.indexes {
		trees[i] = idx.tree
		keyFns[i] = idx.keyFn
	}
	return executor.NewInsert(child, t.heap, trees, keyFns), nil
}

// SeqScanExecutor returns a SeqScan executor over table's heap.
func (e *Engine) SeqScanExecutor(tableName string) (*executor.SeqScan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tables[tableName]
	if !ok {
		return nil, ErrTableNotFound
	}
	return executor.NewSeqScan(t.heap), nil
}

// IndexScanExecutor returns an IndexScan executor over the indexth index
// registered against table, starting at startKey.
func (e *Engine) IndexScanExecutor(tableName string, indexNum int, startKey int64) (*executor.IndexScan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tables[tableName]
	if !ok {
		return nil, ErrTableNotFound
	}
	if indexNum < 0 || indexNum >= len(t.indexes) {
		return nil, ErrIndexNotFound
	}
	return executor.NewIndexScan(t.indexes[indexNum].tree, t.heap, startKey), nil
}
