package bptpage

import (
	"sort"
	"unsafe"

	"relstore/internal/diskstore"
)

// Internal is a view over a page buffer interpreted as a B+Tree internal
// (branch) node: NumKeys() routing keys separating NumKeys()+1 children.
// Children[0] is stored immediately after the header; children[i+1] is
// stored alongside keys[i] in the entry array.
type Internal struct {
	buf *[diskstore.PageSize]byte
}

// AsInternal wraps an already-initialized internal page buffer.
func AsInternal(buf *[diskstore.PageSize]byte) Internal {
	return Internal{buf}
}

// InitInternal stamps a fresh internal page header with a single child
// and no routing keys yet.
func InitInternal(buf *[diskstore.PageSize]byte, pageID diskstore.PageID, firstChild diskstore.PageID) Internal {
	*headerPtr(buf) = header{PageID: pageID, Kind: KindInternal, Next: diskstore.InvalidPageID}
	p := Internal{buf}
	*p.firstChildPtr() = firstChild
	return p
}

// InitInternalWithOneKey builds a fresh two-child root: used when the
// previous root (leaf or internal) splits and the tree grows a level.
func InitInternalWithOneKey(buf *[diskstore.PageSize]byte, pageID diskstore.PageID, left diskstore.PageID, key int64, right diskstore.PageID) Internal {
	p := InitInternal(buf, pageID, left)
	p.entries()[0] = internalEntry{Key: key, Child: right}
	headerPtr(buf).NumKeys = 1
	return p
}

func (p Internal) PageID() diskstore.PageID { return headerPtr(p.buf).PageID }
func (p Internal) NumKeys() int             { return int(headerPtr(p.buf).NumKeys) }
func (p Internal) NumChildren() int         { return p.NumKeys() + 1 }

func (p Internal) IsFull() bool      { return p.NumKeys() >= MaxInternalEntries }
func (p Internal) IsUnderflow() bool { return p.NumKeys() < MaxInternalEntries/2 }

func (p Internal) firstChildPtr() *diskstore.PageID {
	return (*diskstore.PageID)(unsafe.Pointer(&p.buf[headerSize]))
}

func (p Internal) entries() []internalEntry {
	return unsafe.Slice((*internalEntry)(unsafe.Pointer(&p.buf[headerSize+8])), MaxInternalEntries)
}

func (p Internal) KeyAt(i int) int64        { return p.entries()[i].Key }
func (p Internal) SetKeyAt(i int, key int64) { p.entries()[i].Key = key }

// ChildAt returns the i-th child pointer, 0 <= i <= NumKeys().
func (p Internal) ChildAt(i int) diskstore.PageID {
	if i == 0 {
		return *p.firstChildPtr()
	}
	return p.entries()[i-1].Child
}

// FindChildIndex returns the index of the child to descend into for key:
// the largest i such that KeyAt(i-1) <= key, i.e. the first i with
// key < KeyAt(i), or NumKeys() if key is >= every routing key.
func (p Internal) FindChildIndex(key int64) int {
	n := p.NumKeys()
	es := p.entries()
	return sort.Search(n, func(i int) bool { return key < es[i].Key })
}

// InsertAt inserts key/child as the (pos)-th routing key, making child the
// new children[pos+1]. Used when the child currently at children[pos]
// splits and produces a new right sibling.
func (p Internal) InsertAt(pos int, key int64, child diskstore.PageID) bool {
	if p.IsFull() {
		return false
	}
	es := p.entries()
	n := p.NumKeys()
	copy(es[pos+1:n+1], es[pos:n])
	es[pos] = internalEntry{Key: key, Child: child}
	headerPtr(p.buf).NumKeys++
	return true
}

// removeEntryAt removes the i-th routing key, collapsing children[i+1]
// into the gap left behind.
func (p Internal) removeEntryAt(i int) {
	es := p.entries()
	n := p.NumKeys()
	copy(es[i:n-1], es[i+1:n])
	headerPtr(p.buf).NumKeys--
}

// RemoveChildAt removes children[idx] (and the routing key that separated
// it from its left sibling), used after merging children[idx] into its
// left sibling.
func (p Internal) RemoveChildAt(idx int) {
	if idx == 0 {
		*p.firstChildPtr() = p.ChildAt(1)
		p.removeEntryAt(0)
		return
	}
	p.removeEntryAt(idx - 1)
}

// Split moves the upper half of p's routing keys and children into other
// (a freshly allocated, empty internal page) and returns the separator
// key that must be promoted into the parent — unlike a leaf split, this
// key is removed from both halves, since an internal node's keys route
// strictly between children rather than naming a key that lives in a
// leaf.
func (p Internal) Split(other Internal) (separator int64) {
	n := p.NumKeys()
	mid := n / 2
	es := p.entries()
	sep := es[mid].Key

	*other.firstChildPtr() = p.ChildAt(mid + 1)
	oes := other.entries()
	copy(oes[:n-mid-1], es[mid+1:n])
	headerPtr(other.buf).NumKeys = uint16(n - mid - 1)
	headerPtr(p.buf).NumKeys = uint16(mid)
	return sep
}

// Merge pulls the parent's separator key down as the new middle key and
// appends all of right's keys and children onto p.
func (p Internal) Merge(separator int64, right Internal) {
	n := p.NumKeys()
	es := p.entries()
	es[n] = internalEntry{Key: separator, Child: *right.firstChildPtr()}
	rn := right.NumKeys()
	res := right.entries()
	copy(es[n+1:n+1+rn], res[:rn])
	headerPtr(p.buf).NumKeys = uint16(n + 1 + rn)
}

// BorrowFromRight rotates the parent separator down onto p's end (paired
// with right's old first child) and right's first key up to become the
// new separator.
func (p Internal) BorrowFromRight(separator int64, right Internal) (newSeparator int64) {
	n := p.NumKeys()
	es := p.entries()
	es[n] = internalEntry{Key: separator, Child: *right.firstChildPtr()}
	headerPtr(p.buf).NumKeys++

	newSep := right.KeyAt(0)
	*right.firstChildPtr() = right.ChildAt(1)
	right.removeEntryAt(0)
	return newSep
}

// BorrowFromLeft rotates the parent separator down onto p's front (paired
// with p's old first child) and left's last key up to become the new
// separator.
func (p Internal) BorrowFromLeft(separator int64, left Internal) (newSeparator int64) {
	n := p.NumKeys()
	es := p.entries()
	copy(es[1:n+1], es[0:n])
	es[0] = internalEntry{Key: separator, Child: *p.firstChildPtr()}
	ln := left.NumKeys()
	*p.firstChildPtr() = left.ChildAt(ln)
	headerPtr(p.buf).NumKeys++

	newSep := left.KeyAt(ln - 1)
	headerPtr(left.buf).NumKeys--
	return newSep
}
