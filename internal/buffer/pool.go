// Package buffer implements the buffer pool manager: a fixed-size array of
// frames, a page table mapping resident page ids to frames, an LRU-K
// replacer choosing eviction victims, and scoped page guards that couple a
// pin to an optional per-page latch.
//
// Grounded on the teacher's internal/pager.go, which wires together a
// store, a cache and a freelist behind one latch-guarded struct with the
// same "evict then load" sequencing; the dependency-injected constructor
// shape (disk store and log manager passed in, the replacer built from
// poolSize and k) follows NewPager's signature.
package buffer

import (
	"fmt"
	"sync"

	"relstore/internal/diskstore"
	"relstore/internal/logmanager"
	"relstore/internal/replacer"
)

// Pool is the buffer pool manager. All exported methods are safe for
// concurrent use.
type Pool struct {
	mu sync.Mutex

	frames   []*frame
	freeList []FrameID
	pageTbl  map[diskstore.PageID]FrameID

	replacer *replacer.Replacer
	disk     *diskstore.Store
	log      *logmanager.Manager
}

// New constructs a pool of poolSize frames backed by disk, selecting
// eviction victims via an LRU-K replacer with history depth k. log may be
// nil, in which case the flush gate is skipped entirely (useful for tests
// that exercise the pool without a log manager).
func New(poolSize int, k int, disk *diskstore.Store, log *logmanager.Manager) *Pool {
	p := &Pool{
		frames:   make([]*frame, poolSize),
		freeList: make([]FrameID, poolSize),
		pageTbl:  make(map[diskstore.PageID]FrameID, poolSize),
		replacer: replacer.New(poolSize, k),
		disk:     disk,
		log:      log,
	}
	for i := 0; i < poolSize; i++ {
		p.frames[i] = &frame{}
		p.freeList[i] = FrameID(i)
	}
	return p
}

// Size returns the configured number of frames.
func (p *Pool) Size() int {
	return len(p.frames)
}

// findHostFrame returns a frame id ready to receive a new page's contents,
// preferring the free list over eviction. Caller must hold p.mu.
func (p *Pool) findHostFrame() (FrameID, error) {
	if n := len(p.freeList); n > 0 {
		fid := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return fid, nil
	}

	fid, ok := p.replacer.Evict()
	if !ok {
		return 0, ErrPoolFull
	}
	f := p.frames[fid]
	if f.dirty {
		if err := p.writeBack(f); err != nil {
			return 0, err
		}
	}
	delete(p.pageTbl, f.pageID)
	f.reset()
	return fid, nil
}

// writeBack persists a dirty frame's contents, passing first through the
// log manager's flush gate. Caller must hold p.mu.
func (p *Pool) writeBack(f *frame) error {
	if p.log != nil {
		p.log.AppendAndFlush(int64(f.pageID), f.lsn)
	}
	if err := p.disk.WritePage(f.pageID, &f.data); err != nil {
		return fmt.Errorf("buffer: write back page %d: %w", f.pageID, err)
	}
	f.dirty = false
	return nil
}

// NewPage allocates a fresh page on disk, pins it in a frame, and returns a
// write guard over it. The frame's contents start zeroed.
func (p *Pool) NewPage() (*WriteGuard, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, err := p.findHostFrame()
	if err != nil {
		return nil, err
	}
	pid, err := p.disk.AllocatePage()
	if err != nil {
		return nil, fmt.Errorf("buffer: allocate page: %w", err)
	}

	f := p.frames[fid]
	f.pageID = pid
	f.pinCount = 1
	f.dirty = true
	if p.log != nil {
		f.lsn = p.log.NextLSN()
	}

	p.pageTbl[pid] = fid
	p.replacer.RecordAccess(fid, replacer.AccessLookup)
	p.replacer.SetEvictable(fid, false)

	f.latch.Lock()
	return &WriteGuard{basicGuard: basicGuard{pool: p, frame: f}}, nil
}

// fetch returns the frame for pid, pinned, reading it from disk into a
// fresh frame if it is not already resident. Caller must hold p.mu.
func (p *Pool) fetch(pid diskstore.PageID, kind replacer.AccessType) (*frame, error) {
	if fid, ok := p.pageTbl[pid]; ok {
		f := p.frames[fid]
		f.pinCount++
		p.replacer.RecordAccess(fid, kind)
		p.replacer.SetEvictable(fid, false)
		return f, nil
	}

	fid, err := p.findHostFrame()
	if err != nil {
		return nil, err
	}
	f := p.frames[fid]
	if err := p.disk.ReadPage(pid, &f.data); err != nil {
		p.freeList = append(p.freeList, fid)
		return nil, fmt.Errorf("buffer: fetch page %d: %w", pid, err)
	}
	f.pageID = pid
	f.pinCount = 1
	f.dirty = false

	p.pageTbl[pid] = fid
	p.replacer.RecordAccess(fid, kind)
	p.replacer.SetEvictable(fid, false)
	return f, nil
}

// FetchPageBasic pins pid and returns an unlatched guard over it.
func (p *Pool) FetchPageBasic(pid diskstore.PageID) (*BasicGuard, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := p.fetch(pid, replacer.AccessLookup)
	if err != nil {
		return nil, err
	}
	return &BasicGuard{basicGuard{pool: p, frame: f}}, nil
}

// FetchPageRead pins pid and returns it under a shared latch.
func (p *Pool) FetchPageRead(pid diskstore.PageID) (*ReadGuard, error) {
	p.mu.Lock()
	f, err := p.fetch(pid, replacer.AccessLookup)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	f.latch.RLock()
	return &ReadGuard{basicGuard{pool: p, frame: f}}, nil
}

// FetchPageWrite pins pid and returns it under an exclusive latch.
func (p *Pool) FetchPageWrite(pid diskstore.PageID) (*WriteGuard, error) {
	p.mu.Lock()
	f, err := p.fetch(pid, replacer.AccessLookup)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	f.latch.Lock()
	return &WriteGuard{basicGuard{pool: p, frame: f}}, nil
}

// FetchPageScanRead is FetchPageRead with the access recorded as a scan,
// for callers (range iterators, seq scans) whose access pattern the
// replacer's policy may eventually want to treat differently.
func (p *Pool) FetchPageScanRead(pid diskstore.PageID) (*ReadGuard, error) {
	p.mu.Lock()
	f, err := p.fetch(pid, replacer.AccessScan)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	f.latch.RLock()
	return &ReadGuard{basicGuard{pool: p, frame: f}}, nil
}

// unpin decrements pid's pin count and, if it reaches zero, marks the
// frame evictable. Reports false if pid is not resident or already fully
// unpinned.
func (p *Pool) unpin(pid diskstore.PageID, dirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[pid]
	if !ok {
		return false
	}
	f := p.frames[fid]
	if f.pinCount <= 0 {
		return false
	}
	if dirty {
		f.dirty = true
		if p.log != nil {
			f.lsn = p.log.NextLSN()
		}
	}
	f.pinCount--
	if f.pinCount == 0 {
		p.replacer.SetEvictable(fid, true)
	}
	return true
}

// FlushPage writes pid's frame to disk if dirty, regardless of pin state.
// It reports false if pid is not resident.
func (p *Pool) FlushPage(pid diskstore.PageID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[pid]
	if !ok {
		return false, nil
	}
	f := p.frames[fid]
	if !f.dirty {
		return true, nil
	}
	if err := p.writeBack(f); err != nil {
		return false, err
	}
	return true, nil
}

// FlushAllPages writes every dirty resident frame to disk, regardless of
// pin state.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, fid := range p.pageTbl {
		f := p.frames[fid]
		if f.dirty {
			if err := p.writeBack(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeletePage removes pid from the pool and returns its storage to the disk
// store's free list. It refuses a page with outstanding pins.
func (p *Pool) DeletePage(pid diskstore.PageID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[pid]
	if !ok {
		return true, nil
	}
	f := p.frames[fid]
	if f.pinCount > 0 {
		return false, ErrPagePinned
	}

	p.replacer.Remove(fid)
	delete(p.pageTbl, pid)
	f.reset()
	p.freeList = append(p.freeList, fid)

	if err := p.disk.DeallocatePage(pid); err != nil {
		return false, fmt.Errorf("buffer: delete page %d: %w", pid, err)
	}
	return true, nil
}
