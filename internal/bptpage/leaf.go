package bptpage

import (
	"sort"
	"unsafe"

	"relstore/internal/diskstore"
)

// Leaf is a view over a page buffer interpreted as a B+Tree leaf: a
// sorted, fixed-capacity array of (key, RID) entries plus a forward
// sibling link used by range iteration.
type Leaf struct {
	buf *[diskstore.PageSize]byte
}

// AsLeaf wraps an already-initialized leaf page buffer.
func AsLeaf(buf *[diskstore.PageSize]byte) Leaf {
	return Leaf{buf}
}

// InitLeaf stamps a fresh, empty leaf header onto buf.
func InitLeaf(buf *[diskstore.PageSize]byte, pageID diskstore.PageID) Leaf {
	*headerPtr(buf) = header{PageID: pageID, Kind: KindLeaf, Next: diskstore.InvalidPageID}
	return Leaf{buf}
}

func (p Leaf) PageID() diskstore.PageID    { return headerPtr(p.buf).PageID }
func (p Leaf) NumKeys() int                { return int(headerPtr(p.buf).NumKeys) }
func (p Leaf) NextPageID() diskstore.PageID { return headerPtr(p.buf).Next }

func (p Leaf) SetNextPageID(id diskstore.PageID) { headerPtr(p.buf).Next = id }

func (p Leaf) IsFull() bool      { return p.NumKeys() >= MaxLeafEntries }
func (p Leaf) IsUnderflow() bool { return p.NumKeys() < MaxLeafEntries/2 }

// entries returns the full MaxLeafEntries-capacity slot array; only the
// first NumKeys() entries are logically meaningful.
func (p Leaf) entries() []leafEntry {
	return unsafe.Slice((*leafEntry)(unsafe.Pointer(&p.buf[headerSize])), MaxLeafEntries)
}

func (p Leaf) KeyAt(i int) int64 { return p.entries()[i].Key }
func (p Leaf) RIDAt(i int) RID   { return p.entries()[i].RID }

// Search returns the position key belongs at (or already occupies) via
// binary search over the sorted key prefix, and whether it was found
// exactly.
func (p Leaf) Search(key int64) (idx int, found bool) {
	n := p.NumKeys()
	es := p.entries()
	idx = sort.Search(n, func(i int) bool { return es[i].Key >= key })
	if idx < n && es[idx].Key == key {
		return idx, true
	}
	return idx, false
}

// Insert adds (key, rid) in sorted position. It reports false if key
// already exists (keys are unique) or the page is full; callers must
// split before inserting into a full leaf.
func (p Leaf) Insert(key int64, rid RID) bool {
	if p.IsFull() {
		return false
	}
	idx, found := p.Search(key)
	if found {
		return false
	}
	es := p.entries()
	n := p.NumKeys()
	copy(es[idx+1:n+1], es[idx:n])
	es[idx] = leafEntry{Key: key, RID: rid}
	headerPtr(p.buf).NumKeys++
	return true
}

// Delete removes key if present, reporting whether it was found.
func (p Leaf) Delete(key int64) bool {
	idx, found := p.Search(key)
	if !found {
		return false
	}
	p.deleteAt(idx)
	return true
}

func (p Leaf) deleteAt(idx int) {
	es := p.entries()
	n := p.NumKeys()
	copy(es[idx:n-1], es[idx+1:n])
	headerPtr(p.buf).NumKeys--
}

// Split moves the upper half of p's entries into other (a freshly
// allocated, empty leaf page), threads the sibling link between them, and
// returns the separator key: the smallest key now in other, which the
// parent internal page will route on.
func (p Leaf) Split(other Leaf) (separator int64) {
	n := p.NumKeys()
	mid := n / 2
	es := p.entries()
	oes := other.entries()
	copy(oes[:n-mid], es[mid:n])
	headerPtr(other.buf).NumKeys = uint16(n - mid)
	headerPtr(p.buf).NumKeys = uint16(mid)

	other.SetNextPageID(p.NextPageID())
	p.SetNextPageID(other.PageID())
	return other.KeyAt(0)
}

// Merge appends all of right's entries onto p and absorbs its sibling
// link. right's page is not modified; the caller is responsible for
// returning it to the buffer pool.
func (p Leaf) Merge(right Leaf) {
	n := p.NumKeys()
	rn := right.NumKeys()
	es := p.entries()
	res := right.entries()
	copy(es[n:n+rn], res[:rn])
	headerPtr(p.buf).NumKeys = uint16(n + rn)
	p.SetNextPageID(right.NextPageID())
}

// BorrowFromRight moves right's first entry onto p's end, restoring p
// above the minimum occupancy, and returns the new separator key (right's
// new first key) for the parent to update.
func (p Leaf) BorrowFromRight(right Leaf) (newSeparator int64) {
	n := p.NumKeys()
	es := p.entries()
	es[n] = right.entries()[0]
	headerPtr(p.buf).NumKeys++
	right.deleteAt(0)
	return right.KeyAt(0)
}

// BorrowFromLeft moves left's last entry onto p's front, and returns the
// new separator key (p's new first key) for the parent to update.
func (p Leaf) BorrowFromLeft(left Leaf) (newSeparator int64) {
	n := p.NumKeys()
	es := p.entries()
	copy(es[1:n+1], es[0:n])
	ln := left.NumKeys()
	es[0] = left.entries()[ln-1]
	headerPtr(p.buf).NumKeys++
	headerPtr(left.buf).NumKeys--
	return p.KeyAt(0)
}
