package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutGetRoundTrip(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("cat", 1)
	tr = tr.Put("car", 2)
	tr = tr.Put("cart", 3)

	v, ok := tr.Get("cat")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = tr.Get("car")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = tr.Get("cart")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = tr.Get("ca")
	assert.False(t, ok, "prefix with no value of its own must not be found")
}

func TestPutIsPersistentAcrossVersions(t *testing.T) {
	v0 := New[string]()
	v1 := v0.Put("a", "one")
	v2 := v1.Put("a", "two")

	_, ok := v0.Get("a")
	assert.False(t, ok, "the original empty trie must be unaffected by later Puts")

	got1, ok := v1.Get("a")
	require := assert.New(t)
	require.True(ok)
	require.Equal("one", got1)

	got2, _ := v2.Get("a")
	assert.Equal(t, "two", got2)
}

func TestRemoveIsPersistentAndCompactsEmptyNodes(t *testing.T) {
	v1 := New[int]().Put("dog", 1).Put("door", 2)
	v2 := v1.Remove("dog")

	_, ok := v1.Get("dog")
	assert.True(t, ok, "removing from v2 must not affect v1")

	_, ok = v2.Get("dog")
	assert.False(t, ok)
	got, ok := v2.Get("door")
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	_, hasG := v2.root.children['d'].children['o'].children['g']
	assert.False(t, hasG, "the emptied 'g' node must be compacted away")
}

func TestRemoveAbsentKeyIsNoOp(t *testing.T) {
	v1 := New[int]().Put("a", 1)
	v2 := v1.Remove("nonexistent")

	got, ok := v2.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}
