package bptree

import (
	"encoding/binary"

	"relstore/internal/diskstore"
)

// The header page (the first page Bootstrap allocates) holds nothing but the current
// root page id, little-endian in its first 8 bytes. It is not a bptpage
// leaf or internal page — it exists purely as the one piece of mutable
// state every descent must serialize through to see (or replace) the
// current root.
func readRoot(buf *[diskstore.PageSize]byte) diskstore.PageID {
	return diskstore.PageID(binary.LittleEndian.Uint64(buf[:8]))
}

func writeRoot(buf *[diskstore.PageSize]byte, id diskstore.PageID) {
	binary.LittleEndian.PutUint64(buf[:8], uint64(id))
}
