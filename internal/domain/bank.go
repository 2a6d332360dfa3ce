package domain

import "errors"

// Bank rows are created lazily on first reference, never mutated or deleted.
// Name is the natural key; ID is assigned by the store.
type Bank struct {
	ID   int64
	Name string
}

var ErrNotFound = errors.New("not found")
