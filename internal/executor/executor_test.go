package executor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/internal/bptpage"
	"relstore/internal/bptree"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
	"relstore/internal/logmanager"
	"relstore/internal/table"
	"relstore/internal/tuple"
)

// valuesExecutor is a fixed in-memory child executor used to feed rows
// into Insert in tests, standing in for a VALUES clause or another
// executor's output.
type valuesExecutor struct {
	rows []tuple.Tuple
	pos  int
}

func (v *valuesExecutor) Init() error { return nil }

func (v *valuesExecutor) Next() (tuple.Tuple, bptpage.RID, bool) {
	if v.pos >= len(v.rows) {
		return tuple.Tuple{}, bptpage.RID{}, false
	}
	t := v.rows[v.pos]
	v.pos++
	return t, bptpage.RID{}, true
}

func (v *valuesExecutor) Err() error { return nil }
func (v *valuesExecutor) Close()     {}

var schema = tuple.Schema{tuple.KindInteger, tuple.KindVarchar}

func newTestEnv(t *testing.T) (*buffer.Pool, *table.Heap, *bptree.Tree) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exec.db")
	disk, err := diskstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	pool := buffer.New(64, 2, disk, logmanager.New())
	heap, err := table.Bootstrap(pool, schema)
	require.NoError(t, err)
	tree, err := bptree.Bootstrap(pool)
	require.NoError(t, err)
	return pool, heap, tree
}

func rowsOf(n int) []tuple.Tuple {
	rows := make([]tuple.Tuple, n)
	for i := range rows {
		rows[i] = tuple.Tuple{Values: []tuple.Value{tuple.Int(int64(i)), tuple.Str("row")}}
	}
	return rows
}

func TestInsertThenSeqScanSeesEveryRow(t *testing.T) {
	_, heap, tree := newTestEnv(t)

	child := &valuesExecutor{rows: rowsOf(5)}
	keyFn := func(t tuple.Tuple) int64 { return t.Values[0].Integer }
	ins := NewInsert(child, heap, []*bptree.Tree{tree}, []KeyFunc{keyFn})
	require.NoError(t, ins.Init())

	summary, _, ok := ins.Next()
	require.True(t, ok)
	assert.Equal(t, int64(5), summary.Values[0].Integer)

	_, _, ok = ins.Next()
	assert.False(t, ok, "Insert yields exactly one summary tuple")

	scan := NewSeqScan(heap)
	require.NoError(t, scan.Init())
	defer scan.Close()

	var seen []int64
	for {
		tup, _, ok := scan.Next()
		if !ok {
			break
		}
		seen = append(seen, tup.Values[0].Integer)
	}
	require.NoError(t, scan.Err())
	assert.ElementsMatch(t, []int64{0, 1, 2, 3, 4}, seen)
}

func TestIndexScanRespectsStartAndUpperBound(t *testing.T) {
	_, heap, tree := newTestEnv(t)

	child := &valuesExecutor{rows: rowsOf(10)}
	keyFn := func(t tuple.Tuple) int64 { return t.Values[0].Integer }
	ins := NewInsert(child, heap, []*bptree.Tree{tree}, []KeyFunc{keyFn})
	require.NoError(t, ins.Init())
	_, _, ok := ins.Next()
	require.True(t, ok)

	scan := NewIndexScan(tree, heap, 3).WithUpperBound(6)
	require.NoError(t, scan.Init())
	defer scan.Close()

	var seen []int64
	for {
		tup, _, ok := scan.Next()
		if !ok {
			break
		}
		seen = append(seen, tup.Values[0].Integer)
	}
	require.NoError(t, scan.Err())
	assert.Equal(t, []int64{3, 4, 5, 6}, seen)
}
