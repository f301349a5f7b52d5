package store

import "errors"

var (
	// ErrNotFound indicates the requested record is not stored.
	ErrNotFound = errors.New("store: not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrCorrupt indicates a stored record failed to decode.
	ErrCorrupt = errors.New("store: corrupt record")
)
