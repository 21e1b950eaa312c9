// Package diskstore implements the block-addressed page store that sits
// below the buffer pool. It is the "external collaborator" the core spec
// treats as given, made concrete: fixed-size pages, monotonically
// increasing page ids, and a free list of reclaimed ids.
//
// Grounded on the teacher's internal/storage (file-backed ReadAt/WriteAt
// page I/O, atomic stats counters) and internal/pager/freelist.go (free-id
// bookkeeping, simplified here since there is no MVCC epoch to wait on: a
// deallocated page is immediately reusable).
package diskstore

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"relstore/internal/directio"
)

// PageSize is the fixed size of every page in the store, in bytes.
const PageSize = 4096

// PageID identifies a page. Page ids start at 0; the negative sentinel
// InvalidPageID denotes "no page".
type PageID int64

// InvalidPageID is the sentinel meaning "no page".
const InvalidPageID PageID = -1

// Store is a block-addressed, page-granular on-disk store.
type Store struct {
	mu       sync.Mutex
	file     *os.File
	nextID   atomic.Int64
	freeIDs  *btree.BTreeG[PageID] // reclaimed page ids, lowest reused first

	reads  atomic.Uint64
	writes atomic.Uint64
}

func lessPageID(a, b PageID) bool { return a < b }

// Open opens (creating if necessary) the backing file at path.
func Open(path string) (*Store, error) {
	file, err := directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("diskstore: open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("diskstore: stat %s: %w", path, err)
	}

	s := &Store{
		file:    file,
		freeIDs: btree.NewG[PageID](32, lessPageID),
	}
	s.nextID.Store(info.Size() / PageSize)
	return s, nil
}

// ReadPage populates buf (which must be exactly PageSize bytes) with the
// contents of page id.
func (s *Store) ReadPage(id PageID, buf *[PageSize]byte) error {
	offset := int64(id) * PageSize
	n, err := s.file.ReadAt(buf[:], offset)
	s.reads.Add(1)
	if err != nil {
		return fmt.Errorf("diskstore: read page %d: %w", id, err)
	}
	if n != PageSize {
		return fmt.Errorf("diskstore: short read of page %d: got %d bytes", id, n)
	}
	return nil
}

// WritePage durably persists buf to page id.
func (s *Store) WritePage(id PageID, buf *[PageSize]byte) error {
	offset := int64(id) * PageSize
	n, err := s.file.WriteAt(buf[:], offset)
	s.writes.Add(1)
	if err != nil {
		return fmt.Errorf("diskstore: write page %d: %w", id, err)
	}
	if n != PageSize {
		return fmt.Errorf("diskstore: short write of page %d: wrote %d bytes", id, n)
	}
	return nil
}

// AllocatePage returns a fresh page id, reusing a deallocated one if
// available, else extending the file.
func (s *Store) AllocatePage() (PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if min, ok := s.freeIDs.Min(); ok {
		s.freeIDs.Delete(min)
		return min, nil
	}

	id := PageID(s.nextID.Add(1) - 1)
	return id, nil
}

// DeallocatePage returns id to the free list for future reuse. It does not
// zero or otherwise touch the on-disk contents; the buffer pool is
// responsible for clearing the frame before the id is reassigned.
func (s *Store) DeallocatePage(id PageID) error {
	if id == InvalidPageID {
		return fmt.Errorf("diskstore: cannot deallocate invalid page id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freeIDs.ReplaceOrInsert(id)
	return nil
}

// Sync flushes the OS file buffers to stable storage.
func (s *Store) Sync() error {
	return s.file.Sync()
}

// Close releases the backing file.
func (s *Store) Close() error {
	return s.file.Close()
}

// Stats reports I/O counters for diagnostics.
type Stats struct {
	Reads  uint64
	Writes uint64
}

func (s *Store) Stats() Stats {
	return Stats{Reads: s.reads.Load(), Writes: s.writes.Load()}
}
