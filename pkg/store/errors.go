package store

import "errors"

// Standardized store errors. Adapters translate their SDK's failure modes
// into these so callers never handle database-specific error types.
var (
	// ErrObjectNotFound is returned when a record lookup by id finds nothing.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCollectionNotFound is returned when an operation targets a
	// collection absent from the store schema.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNoVectorizer is returned for ranked queries against a collection
	// created without a vectorizer.
	ErrNoVectorizer = errors.New("collection has no vectorizer")
)
