package buffer

import (
	"sync"

	"relstore/internal/diskstore"
	"relstore/internal/replacer"
)

// FrameID indexes a slot in the pool's fixed-size frame array. It is an
// alias for replacer.FrameID: the same identifier space the replacer
// tracks eviction candidates by, so frame ids pass between the pool and
// the replacer without conversion.
type FrameID = replacer.FrameID

// frame is one fixed slot of the buffer pool: a page-sized buffer plus the
// bookkeeping needed to decide when it may be reused. latch guards the
// frame's contents (not its membership in the pool, which is the pool's
// own mutex's job); callers reach it only through a Guard.
//
// Grounded on the teacher's internal/pager.go dual-state split: page
// identity/pin/dirty bookkeeping lives beside the buffer, latched
// independently of the pool-wide structures that find a frame by page id.
type frame struct {
	latch sync.RWMutex

	pageID   diskstore.PageID
	data     [diskstore.PageSize]byte
	pinCount int
	dirty    bool
	lsn      uint64
}

func (f *frame) reset() {
	f.pageID = diskstore.InvalidPageID
	f.data = [diskstore.PageSize]byte{}
	f.pinCount = 0
	f.dirty = false
	f.lsn = 0
}
