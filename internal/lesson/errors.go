package lesson

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when no lesson has the requested title.
var ErrNotFound = errors.New("lesson: not found")

// IsNotFound reports whether err signals a missing lesson.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store operations recorded in StoreError.Op.
const (
	OpList       = "list"
	OpUpsert     = "upsert"
	OpFind       = "find"
	OpSetCounter = "set_counter"
	OpDelete     = "delete"
)

// StoreError wraps any backend failure other than a missing lesson.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("lesson store %s: %v", e.Op, e.Err)
}

// Unwrap exposes the driver error.
func (e *StoreError) Unwrap() error { return e.Err }

// Code is used as err_code in handler summaries.
func (e *StoreError) Code() string { return "STORE_ERROR" }

// WrapStore returns nil for a nil err, otherwise a *StoreError for op.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ValidationError reports command input rejected before touching the store.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code is used as err_code in handler summaries.
func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }
