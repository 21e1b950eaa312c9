package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/internal/bptpage"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
	"relstore/internal/logmanager"
	"relstore/internal/tuple"
)

func newTestHeap(t *testing.T, schema tuple.Schema) *Heap {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heap.db")
	disk, err := diskstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	pool := buffer.New(16, 2, disk, logmanager.New())
	h, err := Bootstrap(pool, schema)
	require.NoError(t, err)
	return h
}

var testSchema = tuple.Schema{tuple.KindInteger, tuple.KindVarchar}

func TestInsertAndGetTupleRoundTrips(t *testing.T) {
	h := newTestHeap(t, testSchema)

	rid, err := h.InsertTuple(tuple.Tuple{Values: []tuple.Value{tuple.Int(1), tuple.Str("alice")}})
	require.NoError(t, err)

	got, ok, err := h.GetTuple(rid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Values[0].Integer)
	assert.Equal(t, "alice", got.Values[1].Varchar)
}

func TestDeleteTupleTombstonesSlot(t *testing.T) {
	h := newTestHeap(t, testSchema)
	rid, err := h.InsertTuple(tuple.Tuple{Values: []tuple.Value{tuple.Int(1), tuple.Str("a")}})
	require.NoError(t, err)

	ok, err := h.DeleteTuple(rid)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = h.GetTuple(rid)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.DeleteTuple(rid)
	require.NoError(t, err)
	assert.False(t, ok, "deleting an already-tombstoned slot reports false")
}

func TestInsertSpillsToNewPageWhenFull(t *testing.T) {
	h := newTestHeap(t, testSchema)

	slotsPerPage := maxSlots(testSchema.Width())
	var rids []bptpage.RID
	for i := 0; i < slotsPerPage+5; i++ {
		rid, err := h.InsertTuple(tuple.Tuple{Values: []tuple.Value{tuple.Int(int64(i)), tuple.Str("x")}})
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	assert.NotEqual(t, rids[0].PageID, rids[len(rids)-1].PageID, "overflow tuples must land on a second page")
}

func TestIteratorVisitsEveryLiveTupleInOrderSkippingTombstones(t *testing.T) {
	h := newTestHeap(t, testSchema)

	var rids []bptpage.RID
	for i := 0; i < 5; i++ {
		rid, err := h.InsertTuple(tuple.Tuple{Values: []tuple.Value{tuple.Int(int64(i)), tuple.Str("x")}})
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	ok, err := h.DeleteTuple(rids[2])
	require.NoError(t, err)
	require.True(t, ok)

	it, err := h.Iterator()
	require.NoError(t, err)
	defer it.Close()

	var seen []int64
	for it.Valid() {
		seen = append(seen, it.Tuple().Values[0].Integer)
		require.NoError(t, it.Next())
	}
	assert.Equal(t, []int64{0, 1, 3, 4}, seen)
}
