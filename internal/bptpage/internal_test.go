package bptpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/internal/diskstore"
)

func newInternalBuf(pageID, firstChild diskstore.PageID) (*[diskstore.PageSize]byte, Internal) {
	buf := &[diskstore.PageSize]byte{}
	return buf, InitInternal(buf, pageID, firstChild)
}

func TestInternalFindChildIndex(t *testing.T) {
	_, node := newInternalBuf(1, 100)
	// children: 100 | 10 | 101 | 20 | 102 | 30 | 103
	require.True(t, node.InsertAt(0, 10, 101))
	require.True(t, node.InsertAt(1, 20, 102))
	require.True(t, node.InsertAt(2, 30, 103))

	cases := []struct {
		key  int64
		want int
	}{
		{5, 0}, {10, 1}, {15, 1}, {20, 2}, {25, 2}, {30, 3}, {35, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, node.FindChildIndex(c.key), "key %d", c.key)
	}
	assert.Equal(t, diskstore.PageID(100), node.ChildAt(0))
	assert.Equal(t, diskstore.PageID(103), node.ChildAt(3))
}

func TestInternalSplitPromotesMiddleKey(t *testing.T) {
	_, left := newInternalBuf(1, 100)
	rightBuf := &[diskstore.PageSize]byte{}
	right := Internal{rightBuf}

	const n = 9
	for i := 0; i < n; i++ {
		require.True(t, left.InsertAt(i, int64(i*10), diskstore.PageID(200+i)))
	}

	sep := left.Split(right)

	mid := n / 2
	assert.Equal(t, int64(mid*10), sep)
	assert.Equal(t, mid, left.NumKeys())
	assert.Equal(t, n-mid-1, right.NumKeys())
	// the separator's child becomes right's first child
	assert.Equal(t, diskstore.PageID(200+mid), right.ChildAt(0))
}

func TestInternalRemoveChildAtZeroPromotesFirstChild(t *testing.T) {
	_, node := newInternalBuf(1, 100)
	require.True(t, node.InsertAt(0, 10, 101))
	require.True(t, node.InsertAt(1, 20, 102))

	node.RemoveChildAt(0)

	assert.Equal(t, diskstore.PageID(101), node.ChildAt(0))
	assert.Equal(t, 1, node.NumKeys())
	assert.Equal(t, int64(20), node.KeyAt(0))
}

func TestInternalRemoveChildAtMiddle(t *testing.T) {
	_, node := newInternalBuf(1, 100)
	require.True(t, node.InsertAt(0, 10, 101))
	require.True(t, node.InsertAt(1, 20, 102))

	node.RemoveChildAt(1) // removes child 101 and its separator key 10

	assert.Equal(t, 1, node.NumKeys())
	assert.Equal(t, diskstore.PageID(100), node.ChildAt(0))
	assert.Equal(t, diskstore.PageID(102), node.ChildAt(1))
	assert.Equal(t, int64(20), node.KeyAt(0))
}

func TestInternalMergePullsDownSeparator(t *testing.T) {
	_, left := newInternalBuf(1, 100)
	rightBuf := &[diskstore.PageSize]byte{}
	right := Internal{rightBuf}
	*right.firstChildPtr() = 300
	require.True(t, right.InsertAt(0, 40, 301))

	left.Merge(35, right)

	require.Equal(t, 2, left.NumKeys())
	assert.Equal(t, int64(35), left.KeyAt(0))
	assert.Equal(t, diskstore.PageID(300), left.ChildAt(1))
	assert.Equal(t, int64(40), left.KeyAt(1))
	assert.Equal(t, diskstore.PageID(301), left.ChildAt(2))
}

func TestInternalBorrowFromRight(t *testing.T) {
	_, left := newInternalBuf(1, 100)
	rightBuf := &[diskstore.PageSize]byte{}
	right := Internal{rightBuf}
	*right.firstChildPtr() = 300
	require.True(t, right.InsertAt(0, 40, 301))
	require.True(t, right.InsertAt(1, 50, 302))

	newSep := left.BorrowFromRight(35, right)

	assert.Equal(t, int64(40), newSep)
	assert.Equal(t, 1, left.NumKeys())
	assert.Equal(t, int64(35), left.KeyAt(0))
	assert.Equal(t, diskstore.PageID(300), left.ChildAt(1))
	assert.Equal(t, 1, right.NumKeys())
	assert.Equal(t, diskstore.PageID(301), *right.firstChildPtr())
}

func TestInternalBorrowFromLeft(t *testing.T) {
	_, left := newInternalBuf(1, 100)
	require.True(t, left.InsertAt(0, 10, 101))
	require.True(t, left.InsertAt(1, 20, 102))
	rightBuf := &[diskstore.PageSize]byte{}
	right := Internal{rightBuf}
	*right.firstChildPtr() = 300

	newSep := right.BorrowFromLeft(25, left)

	assert.Equal(t, int64(20), newSep)
	assert.Equal(t, 1, right.NumKeys())
	assert.Equal(t, diskstore.PageID(102), *right.firstChildPtr())
	assert.Equal(t, diskstore.PageID(300), right.ChildAt(1))
	assert.Equal(t, 1, left.NumKeys())
}
