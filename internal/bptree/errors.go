package bptree

import "errors"

var (
	// ErrKeyNotFound is returned by Lookup and Delete when the key is absent.
	ErrKeyNotFound = errors.New("bptree: key not found")
	// ErrDuplicateKey is returned by Insert when the key already exists.
	ErrDuplicateKey = errors.New("bptree: duplicate key")
)
