// Package executor implements the pull-based query executors that sit
// on top of the table heap and B+Tree index: SeqScan, Insert, and
// IndexScan. Grounded in the teacher's Cursor type (internal/cursor.go),
// which exposes ordered iteration the same pull-one-at-a-time way; these
// executors generalize that single-cursor shape into a small composable
// interface so Insert can sit on top of an arbitrary child executor.
package executor

import (
	"relstore/internal/bptpage"
	"relstore/internal/tuple"
)

// Executor is a pull iterator over tuples. Next returns the next tuple
// and its RID, or ok=false once exhausted; a false result paired with a
// non-nil Err means the scan stopped early because of an error rather
// than reaching the end.
type Executor interface {
	Init() error
	Next() (tuple.Tuple, bptpage.RID, bool)
	Err() error
	Close()
}
