package buffer

import "errors"

var (
	// ErrPoolFull is returned when every frame is pinned and none can be
	// evicted to make room for a new or fetched page.
	ErrPoolFull = errors.New("buffer: no free frame available")

	// ErrPageNotFound is returned by operations on a page id the pool has
	// no frame resident for.
	ErrPageNotFound = errors.New("buffer: page not resident")

	// ErrPagePinned is returned by DeletePage when the target page still
	// has outstanding pins.
	ErrPagePinned = errors.New("buffer: page is pinned")
)
