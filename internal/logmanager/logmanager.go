// Package logmanager provides the minimal synchronous write-through log
// interface the buffer pool's flush gate depends on. It keeps no log
// records: a write-ahead log with redo/undo is out of scope, so there is
// nothing to replay and nothing to retain. What remains is the contract a
// real WAL would also have to satisfy before letting a dirty page reach
// disk — advance a flushed-LSN watermark synchronously and report it back.
//
// Grounded on the teacher's internal/pager.go, which stamps and tracks a
// monotonic page/transaction counter (atomic.Uint64) guarding what has and
// has not reached stable storage.
package logmanager

import "sync/atomic"

// Manager tracks the highest LSN known to be durable. AppendAndFlush is
// synchronous: by the time it returns, lsn is considered flushed. There is
// no background flusher and no buffered log records.
type Manager struct {
	flushed atomic.Uint64
	next    atomic.Uint64
}

// New returns a Manager with nothing yet flushed.
func New() *Manager {
	return &Manager{}
}

// AppendAndFlush synchronously advances the flushed-LSN watermark to lsn if
// lsn is larger than the current watermark. pageID is accepted to mirror a
// real log record's association between an LSN and the page it protects;
// this stub does not otherwise use it.
func (m *Manager) AppendAndFlush(pageID int64, lsn uint64) {
	for {
		cur := m.flushed.Load()
		if lsn <= cur {
			return
		}
		if m.flushed.CompareAndSwap(cur, lsn) {
			return
		}
	}
}

// GetFlushedLSN returns the highest LSN known to be durable.
func (m *Manager) GetFlushedLSN() uint64 {
	return m.flushed.Load()
}

// NextLSN hands out a fresh, strictly increasing LSN for a page about to be
// dirtied. It is independent of AppendAndFlush's watermark: a page's LSN
// only needs to be flushed (via AppendAndFlush) before that page's bytes
// are written back to the disk store.
func (m *Manager) NextLSN() uint64 {
	return m.next.Add(1)
}
