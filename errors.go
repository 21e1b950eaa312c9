package relstore

import (
	"errors"

	"relstore/internal/bptree"
)

// Sentinel errors surfaced across the engine's public surface. The buffer
// pool and B+Tree packages define their own sentinels for internal use;
// these aliases let callers of the top-level Engine match on them without
// importing internal packages directly.
var (
	ErrKeyNotFound  = bptree.ErrKeyNotFound
	ErrDuplicateKey = bptree.ErrDuplicateKey

	// ErrTableNotFound is returned when an Engine operation names a table
	// that has not been created.
	ErrTableNotFound = errors.New("relstore: table not found")

	// ErrTableExists is returned by CreateTable when the name is already
	// in use.
	ErrTableExists = errors.New("relstore: table already exists")

	// ErrIndexNotFound is returned when an Engine operation names an index
	// that has not been created.
	ErrIndexNotFound = errors.New("relstore: index not found")
)
