package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvictTieBreakByBackwardKDistance mirrors scenario 2 with frame ids
// numbered from 0: pool_size=2, k=2. Accesses 0@t=1, 1@t=2, 0@t=3, 1@t=4.
// Both frames have |history|=2; backward-2 distance of 0 is 4-1=3, of 1 is
// 4-2=2, so 0 is evicted.
func TestEvictTieBreakByBackwardKDistance(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0, AccessLookup) // t=1
	r.RecordAccess(1, AccessLookup) // t=2
	r.RecordAccess(0, AccessLookup) // t=3
	r.RecordAccess(1, AccessLookup) // t=4
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(0), victim)
}

func TestEvictScenario1PrefersUnderKFrame(t *testing.T) {
	r := New(3, 2)
	for _, f := range []FrameID{0, 1, 2, 0, 1, 0} {
		r.RecordAccess(f, AccessLookup)
	}
	for _, f := range []FrameID{0, 1, 2} {
		r.SetEvictable(f, true)
	}

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(2), victim, "frame 2 is the only one with <k accesses")
}

func TestEvictNoneWhenNothingEvictable(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0, AccessLookup)
	r.RecordAccess(1, AccessLookup)

	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestSetEvictableNoopWhenUnchanged(t *testing.T) {
	r := New(1, 2)
	r.RecordAccess(0, AccessLookup)
	r.SetEvictable(0, true)
	assert.Equal(t, 1, r.Size())
	r.SetEvictable(0, true)
	assert.Equal(t, 1, r.Size())
}

func TestRemoveNonEvictablePanics(t *testing.T) {
	r := New(1, 2)
	r.RecordAccess(0, AccessLookup)
	assert.Panics(t, func() { r.Remove(0) })
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	r := New(1, 2)
	assert.NotPanics(t, func() { r.Remove(0) })
}

func TestRecordAccessOutOfRangePanics(t *testing.T) {
	r := New(1, 2)
	assert.Panics(t, func() { r.RecordAccess(5, AccessLookup) })
}

func TestSizeTracksEvictableCount(t *testing.T) {
	r := New(3, 2)
	for _, f := range []FrameID{0, 1, 2} {
		r.RecordAccess(f, AccessLookup)
	}
	assert.Equal(t, 0, r.Size())

	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	assert.Equal(t, 2, r.Size())

	r.SetEvictable(0, false)
	assert.Equal(t, 1, r.Size())
}

// TestMigrationFromUnderKToEqualsK verifies a frame moves heaps once its
// history reaches k entries, and subsequent eviction uses the new heap's
// ordering.
func TestMigrationFromUnderKToEqualsK(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0, AccessLookup) // history len 1, still <k
	r.SetEvictable(0, true)
	r.RecordAccess(0, AccessLookup) // history len 2 == k: moves to the ==k heap
	r.RecordAccess(1, AccessLookup)
	r.SetEvictable(1, true)

	// Frame 1 has only one access; it must be preferred for eviction.
	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), victim)
}
