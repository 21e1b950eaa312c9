package table

import (
	"encoding/binary"

	"relstore/internal/diskstore"
)

// The head pointer page holds nothing but the table heap's current head
// page id, mirroring internal/bptree's header-page-as-root-pointer
// pattern so the heap's entry point survives a restart independent of
// any particular page id the allocator happened to hand out.
func readHeadPageID(buf *[diskstore.PageSize]byte) diskstore.PageID {
	return diskstore.PageID(binary.LittleEndian.Uint64(buf[:8]))
}

func writeHeadPageID(buf *[diskstore.PageSize]byte, id diskstore.PageID) {
	binary.LittleEndian.PutUint64(buf[:8], uint64(id))
}
