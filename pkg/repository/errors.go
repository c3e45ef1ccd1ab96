package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a staged update or delete matches no row
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write violates a store constraint
	// (unique key, missing parent, ...)
	ErrConflict = errors.New("entity conflict detected")

	// ErrInvalidArgument is returned for out-of-range paging or unsupported filters
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTransactionFailed is returned when a unit of work could not be committed
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrUnitOfWorkClosed is returned when a unit of work is used after Commit or Close
	ErrUnitOfWorkClosed = errors.New("unit of work is closed")

	// ErrAmbiguousName is returned when an exact-name lookup matches more than one row
	ErrAmbiguousName = errors.New("name matches more than one entity")
)

// ArgumentError reports which parameter was out of range.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid argument %s", e.Param)
	}
	return fmt.Sprintf("invalid argument %s: %s", e.Param, e.Reason)
}

// Is makes every ArgumentError match ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
