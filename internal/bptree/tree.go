// Package bptree implements a disk-backed B+Tree index over fixed-width
// int64 keys, using pessimistic top-down latch crabbing for inserts and
// deletes: guards are carried down an ancestor stack and released early
// once a node is proven "safe" (it cannot possibly need to split or
// rebalance as a result of the operation underway), so only the handful
// of pages actually touched by a split, merge or borrow stay latched.
//
// Grounded on the teacher's internal/algo/cow.go, which walks the same
// child-split/borrow/merge decision tree (ApplyChildSplit, BorrowFromLeft,
// BorrowFromRight, MergeNodes, NewBranchRoot); this tree differs by
// mutating pages in place under latches rather than cloning nodes
// copy-on-write, since the buffer pool already gives every writer an
// exclusive frame latch.
package bptree

import (
	"fmt"

	"relstore/internal/bptpage"
	"relstore/internal/buffer"
	"relstore/internal/diskstore"
)

// Tree is a B+Tree index backed by a buffer pool. The header page
// (t.headerPageID) holds nothing but the current root page id; every
// descent reads it first to learn where the root currently lives.
type Tree struct {
	pool         *buffer.Pool
	headerPageID diskstore.PageID
}

// Bootstrap allocates a fresh header page and an empty leaf root, wiring
// the two together, and returns a Tree ready for use. Used when creating
// a brand new index.
func Bootstrap(pool *buffer.Pool) (*Tree, error) {
	headerGuard, err := pool.NewPage()
	if err != nil {
		return nil, fmt.Errorf("bptree: allocate header page: %w", err)
	}
	rootGuard, err := pool.NewPage()
	if err != nil {
		headerGuard.Drop()
		return nil, fmt.Errorf("bptree: allocate root page: %w", err)
	}

	bptpage.InitLeaf(rootGuard.Data(), rootGuard.PageID())
	rootGuard.MarkDirty()
	writeRoot(headerGuard.Data(), rootGuard.PageID())
	headerGuard.MarkDirty()

	headerPageID := headerGuard.PageID()
	rootGuard.Drop()
	headerGuard.Drop()
	return &Tree{pool: pool, headerPageID: headerPageID}, nil
}

// Open wraps an existing index whose header page is already at
// headerPageID.
func Open(pool *buffer.Pool, headerPageID diskstore.PageID) *Tree {
	return &Tree{pool: pool, headerPageID: headerPageID}
}

// HeaderPageID returns the page id callers should persist (e.g. in a
// catalog) to reopen this tree later.
func (t *Tree) HeaderPageID() diskstore.PageID { return t.headerPageID }

func releasePath(path []*buffer.WriteGuard) {
	for _, g := range path {
		g.Drop()
	}
}

// Lookup returns the RID stored under key, or ErrKeyNotFound.
func (t *Tree) Lookup(key int64) (bptpage.RID, error) {
	hg, err := t.pool.FetchPageRead(t.headerPageID)
	if err != nil {
		return bptpage.RID{}, err
	}
	rootID := readRoot(hg.Data())
	cur, err := t.pool.FetchPageRead(rootID)
	hg.Drop()
	if err != nil {
		return bptpage.RID{}, err
	}

	for bptpage.Kind(cur.Data()) == bptpage.KindInternal {
		internal := bptpage.AsInternal(cur.Data())
		idx := internal.FindChildIndex(key)
		childID := internal.ChildAt(idx)
		child, err := t.pool.FetchPageRead(childID)
		cur.Drop()
		if err != nil {
			return bptpage.RID{}, err
		}
		cur = child
	}

	leaf := bptpage.AsLeaf(cur.Data())
	idx, found := leaf.Search(key)
	if !found {
		cur.Drop()
		return bptpage.RID{}, ErrKeyNotFound
	}
	rid := leaf.RIDAt(idx)
	cur.Drop()
	return rid, nil
}

// isSafeForInsert reports whether a node can absorb one more entry
// without splitting, the safety predicate that bounds how far up the
// ancestor stack an insert-triggered split can possibly propagate.
func isSafeForInsert(buf *[diskstore.PageSize]byte) bool {
	if bptpage.Kind(buf) == bptpage.KindLeaf {
		return !bptpage.AsLeaf(buf).IsFull()
	}
	return !bptpage.AsInternal(buf).IsFull()
}

// canLend reports whether a node could give up one entry (to a borrow or
// as the cost of being merged away) and still meet minimum occupancy,
// the safety predicate that bounds how far a delete-triggered rebalance
// can propagate.
func canLend(buf *[diskstore.PageSize]byte) bool {
	if bptpage.Kind(buf) == bptpage.KindLeaf {
		return bptpage.AsLeaf(buf).NumKeys()-1 >= bptpage.MaxLeafEntries/2
	}
	return bptpage.AsInternal(buf).NumKeys()-1 >= bptpage.MaxInternalEntries/2
}

func mergeInto(leftBuf, rightBuf *[diskstore.PageSize]byte, separator int64) {
	if bptpage.Kind(leftBuf) == bptpage.KindLeaf {
		bptpage.AsLeaf(leftBuf).Merge(bptpage.AsLeaf(rightBuf))
		return
	}
	bptpage.AsInternal(leftBuf).Merge(separator, bptpage.AsInternal(rightBuf))
}

func borrowRightInto(leftBuf, rightBuf *[diskstore.PageSize]byte, separator int64) int64 {
	if bptpage.Kind(leftBuf) == bptpage.KindLeaf {
		return bptpage.AsLeaf(leftBuf).BorrowFromRight(bptpage.AsLeaf(rightBuf))
	}
	return bptpage.AsInternal(leftBuf).BorrowFromRight(separator, bptpage.AsInternal(rightBuf))
}

func borrowLeftInto(rightBuf, leftBuf *[diskstore.PageSize]byte, separator int64) int64 {
	if bptpage.Kind(rightBuf) == bptpage.KindLeaf {
		return bptpage.AsLeaf(rightBuf).BorrowFromLeft(bptpage.AsLeaf(leftBuf))
	}
	return bptpage.AsInternal(rightBuf).BorrowFromLeft(separator, bptpage.AsInternal(leftBuf))
}

// childPosition returns the index at which childID appears among parent's
// children. FindChildIndex routes by key; this is its inverse, needed
// once we already know which child underflowed and want its siblings.
func childPosition(parent bptpage.Internal, childID diskstore.PageID) int {
	for i := 0; i < parent.NumChildren(); i++ {
		if parent.ChildAt(i) == childID {
			return i
		}
	}
	return -1
}

// Insert adds key/rid to the tree, splitting leaves and internal nodes
// as needed and growing the tree by one level if the root itself splits.
// It reports ErrDuplicateKey if key is already present.
func (t *Tree) Insert(key int64, rid bptpage.RID) error {
	headerGuard, err := t.pool.FetchPageWrite(t.headerPageID)
	if err != nil {
		return err
	}
	rootID := readRoot(headerGuard.Data())

	path := []*buffer.WriteGuard{headerGuard}
	curID := rootID
	for {
		curGuard, err := t.pool.FetchPageWrite(curID)
		if err != nil {
			releasePath(path)
			return err
		}
		if isSafeForInsert(curGuard.Data()) {
			// curGuard cannot possibly split, so nothing above it can
			// either: release every ancestor gathered so far except the
			// header, which stays latched until we know whether the root
			// itself ends up splitting.
			releasePath(path[1:])
			path = path[:1]
		}
		path = append(path, curGuard)
		if bptpage.Kind(curGuard.Data()) == bptpage.KindLeaf {
			break
		}
		internal := bptpage.AsInternal(curGuard.Data())
		idx := internal.FindChildIndex(key)
		curID = internal.ChildAt(idx)
	}

	leafGuard := path[len(path)-1]
	leaf := bptpage.AsLeaf(leafGuard.Data())
	if _, found := leaf.Search(key); found {
		releasePath(path)
		return ErrDuplicateKey
	}

	if !leaf.IsFull() {
		leaf.Insert(key, rid)
		leafGuard.MarkDirty()
		releasePath(path)
		return nil
	}

	newLeafGuard, err := t.pool.NewPage()
	if err != nil {
		releasePath(path)
		return fmt.Errorf("bptree: allocate split leaf: %w", err)
	}
	newLeaf := bptpage.InitLeaf(newLeafGuard.Data(), newLeafGuard.PageID())
	sep := leaf.Split(newLeaf)
	if key < sep {
		leaf.Insert(key, rid)
	} else {
		newLeaf.Insert(key, rid)
	}
	leafGuard.MarkDirty()
	newLeafGuard.MarkDirty()

	leftID := leafGuard.PageID()
	pendingSep := sep
	pendingRight := newLeafGuard.PageID()
	newLeafGuard.Drop()
	leafGuard.Drop()
	path = path[:len(path)-1]

	for {
		if len(path) == 1 {
			// path[0] is always the header guard, kept latched across the
			// whole descent: nothing but it remains, so the split just
			// propagated past the real root and a new one must be grown.
			newRootGuard, err := t.pool.NewPage()
			if err != nil {
				releasePath(path)
				return fmt.Errorf("bptree: allocate new root: %w", err)
			}
			bptpage.InitInternalWithOneKey(newRootGuard.Data(), newRootGuard.PageID(), leftID, pendingSep, pendingRight)
			newRootGuard.MarkDirty()
			writeRoot(path[0].Data(), newRootGuard.PageID())
			path[0].MarkDirty()
			newRootGuard.Drop()
			releasePath(path)
			return nil
		}

		parentGuard := path[len(path)-1]
		parent := bptpage.AsInternal(parentGuard.Data())
		idx := parent.FindChildIndex(pendingSep)
		if !parent.IsFull() {
			parent.InsertAt(idx, pendingSep, pendingRight)
			parentGuard.MarkDirty()
			releasePath(path)
			return nil
		}

		newParentGuard, err := t.pool.NewPage()
		if err != nil {
			releasePath(path)
			return fmt.Errorf("bptree: allocate split internal: %w", err)
		}
		newParent := bptpage.InitInternal(newParentGuard.Data(), newParentGuard.PageID(), diskstore.InvalidPageID)
		sepUp := parent.Split(newParent)
		if pendingSep < sepUp {
			parent.InsertAt(parent.FindChildIndex(pendingSep), pendingSep, pendingRight)
		} else {
			newParent.InsertAt(newParent.FindChildIndex(pendingSep), pendingSep, pendingRight)
		}
		parentGuard.MarkDirty()
		newParentGuard.MarkDirty()

		leftID = parentGuard.PageID()
		pendingSep = sepUp
		pendingRight = newParentGuard.PageID()
		newParentGuard.Drop()
		parentGuard.Drop()
		path = path[:len(path)-1]
	}
}

// Delete removes key from the tree, borrowing from or merging with a
// sibling to repair any underflow this causes, and collapses the root by
// one level if it is left with a single child. It reports ErrKeyNotFound
// if key is absent.
func (t *Tree) Delete(key int64) error {
	headerGuard, err := t.pool.FetchPageWrite(t.headerPageID)
	if err != nil {
		return err
	}
	rootID := readRoot(headerGuard.Data())

	path := []*buffer.WriteGuard{headerGuard}
	curID := rootID
	for {
		curGuard, err := t.pool.FetchPageWrite(curID)
		if err != nil {
			releasePath(path)
			return err
		}
		if canLend(curGuard.Data()) {
			// curGuard can absorb a borrow/merge without itself underflowing,
			// so no ancestor above it will need repair either: release every
			// ancestor gathered so far except the header, which stays
			// latched until we know whether the root itself collapses.
			releasePath(path[1:])
			path = path[:1]
		}
		path = append(path, curGuard)
		if bptpage.Kind(curGuard.Data()) == bptpage.KindLeaf {
			break
		}
		internal := bptpage.AsInternal(curGuard.Data())
		idx := internal.FindChildIndex(key)
		curID = internal.ChildAt(idx)
	}

	leafGuard := path[len(path)-1]
	leaf := bptpage.AsLeaf(leafGuard.Data())
	if !leaf.Delete(key) {
		releasePath(path)
		return ErrKeyNotFound
	}
	leafGuard.MarkDirty()

	if leafGuard.PageID() == rootID || !leaf.IsUnderflow() {
		releasePath(path)
		return nil
	}

	childGuard := leafGuard
	childID := leafGuard.PageID()
	path = path[:len(path)-1]

	for {
		if len(path) == 1 {
			// path[0] is always the header guard, kept latched across the
			// whole descent: nothing but it remains, so childGuard is the
			// tree's actual root and there is no parent left to rebalance
			// against. Collapse the root if it has been merged down to a
			// single child.
			if bptpage.Kind(childGuard.Data()) == bptpage.KindInternal {
				root := bptpage.AsInternal(childGuard.Data())
				if root.NumKeys() == 0 {
					newRootID := root.ChildAt(0)
					writeRoot(path[0].Data(), newRootID)
					path[0].MarkDirty()
					oldRootID := childGuard.PageID()
					childGuard.Drop()
					path[0].Drop()
					_, err := t.pool.DeletePage(oldRootID)
					return err
				}
			}
			childGuard.Drop()
			path[0].Drop()
			return nil
		}

		parentGuard := path[len(path)-1]
		parent := bptpage.AsInternal(parentGuard.Data())
		idx := childPosition(parent, childID)

		if idx < parent.NumChildren()-1 {
			rightSibID := parent.ChildAt(idx + 1)
			rightGuard, err := t.pool.FetchPageWrite(rightSibID)
			if err != nil {
				childGuard.Drop()
				releasePath(path)
				return err
			}
			sep := parent.KeyAt(idx)
			if canLend(rightGuard.Data()) {
				newSep := borrowRightInto(childGuard.Data(), rightGuard.Data(), sep)
				parent.SetKeyAt(idx, newSep)
				childGuard.MarkDirty()
				rightGuard.MarkDirty()
				parentGuard.MarkDirty()
				rightGuard.Drop()
				childGuard.Drop()
				releasePath(path)
				return nil
			}
			mergeInto(childGuard.Data(), rightGuard.Data(), sep)
			childGuard.MarkDirty()
			parent.RemoveChildAt(idx + 1)
			parentGuard.MarkDirty()
			rightGuard.Drop()
			if _, err := t.pool.DeletePage(rightSibID); err != nil {
				childGuard.Drop()
				releasePath(path)
				return err
			}
		} else {
			leftSibID := parent.ChildAt(idx - 1)
			leftGuard, err := t.pool.FetchPageWrite(leftSibID)
			if err != nil {
				childGuard.Drop()
				releasePath(path)
				return err
			}
			sep := parent.KeyAt(idx - 1)
			if canLend(leftGuard.Data()) {
				newSep := borrowLeftInto(childGuard.Data(), leftGuard.Data(), sep)
				parent.SetKeyAt(idx-1, newSep)
				childGuard.MarkDirty()
				leftGuard.MarkDirty()
				parentGuard.MarkDirty()
				leftGuard.Drop()
				childGuard.Drop()
				releasePath(path)
				return nil
			}
			mergeInto(leftGuard.Data(), childGuard.Data(), sep)
			leftGuard.MarkDirty()
			parent.RemoveChildAt(idx)
			parentGuard.MarkDirty()
			childGuard.Drop()
			if _, err := t.pool.DeletePage(childID); err != nil {
				leftGuard.Drop()
				releasePath(path)
				return err
			}
			childGuard = leftGuard
			childID = leftSibID
		}

		if !parent.IsUnderflow() {
			childGuard.Drop()
			releasePath(path)
			return nil
		}
		childGuard.Drop()
		childID = parentGuard.PageID()
		childGuard = parentGuard
		path = path[:len(path)-1]
	}
}
