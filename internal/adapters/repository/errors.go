package repository

import "errors"

// Sentinel kinds for match store errors.
var (
	ErrNotFound = errors.New("match not found")
	ErrCapacity = errors.New("match capacity reached")
)
