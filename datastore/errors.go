package datastore

import "errors"

// Error sentinels for the column store contract. I/O failures from the
// underlying driver are wrapped and can be unwrapped with errors.Is/As.
var (
	// ErrNotFound indicates the addressed row or column does not exist.
	// This always means a corrupt or out-of-sync store and is never
	// silently defaulted by callers.
	ErrNotFound = errors.New("not found")

	// ErrClosed indicates an operation was attempted after Close.
	ErrClosed = errors.New("data source is closed")
)
