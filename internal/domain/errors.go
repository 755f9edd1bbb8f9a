package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrOutOfRange    = errors.New("value out of range")
	ErrInvalidFormat = errors.New("invalid format")
	ErrDuplicateID   = errors.New("product id already exists")
)

// ValidationError reports which field rejected a product and why.
// errors.Is matches it against ErrMissingField, ErrOutOfRange or ErrInvalidFormat.
type ValidationError struct {
	Kind  error
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// MissingField is returned when a required field is absent
func MissingField(field string) *ValidationError {
	return &ValidationError{Kind: ErrMissingField, Field: field}
}

// OutOfRange is returned when a numeric field violates its bounds
func OutOfRange(field string) *ValidationError {
	return &ValidationError{Kind: ErrOutOfRange, Field: field}
}

// InvalidFormat is returned when a field fails a structural check
func InvalidFormat(field string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidFormat, Field: field}
}

// StorageError wraps a failure reported by a repository implementation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err, returning nil when err is nil
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
