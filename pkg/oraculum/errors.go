package oraculum

import (
	"errors"
	"fmt"
)

// ── Sentinel Errors ──────────────────────────────────────────────────────────

var (
	// ErrNotConnected is returned when an operation is invoked before
	// Connect has bound the fact collection.
	ErrNotConnected = errors.New("knowledge base not connected")

	// ErrNotInitialized is returned by Connect when the store has never
	// been initialized for this application.
	ErrNotInitialized = errors.New("store has not been initialized, run Init first")

	// ErrNotFound is returned by update and delete flows addressing a
	// record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInconsistentSchema is returned when the persisted configuration
	// claims a schema version whose collection is missing. This happens
	// after an interrupted migration and requires operator intervention.
	ErrInconsistentSchema = errors.New("configured schema version does not match store state")
)

// ── Typed Errors ─────────────────────────────────────────────────────────────

// StoreError wraps any transport or remote failure from the backing store.
// Callers never see the raw store client error type.
type StoreError struct {
	Op    string
	Class string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s on %s failed: %v", e.Op, e.Class, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// storeErr wraps err as a StoreError unless it is nil.
func storeErr(op, class string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Class: class, Cause: err}
}

// SchemaMismatchError reports a usage violation: an operation addressed a
// property that is not declared on the collection, or supplied a value whose
// type does not match the declared one. It is a client error, distinct from
// transport failures.
type SchemaMismatchError struct {
	Class    string
	Property string
	Reason   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch on %s.%s: %s", e.Class, e.Property, e.Reason)
}

// DescriptorError reports an invalid entity descriptor, such as one that
// declares no attribute fields.
type DescriptorError struct {
	Class  string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor for %s: %s", e.Class, e.Reason)
}
