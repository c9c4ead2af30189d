package serviceerrors

import (
	"errors"
	"fmt"
)

// StorageError represents an error in storage operations
type StorageError struct {
	Message string
	Code    int
}

func (e *StorageError) Error() string {
	return e.Message
}

func NewStorageErrorWithError(err error, format string, a ...any) *StorageError {
	msg := fmt.Sprintf(format, a...)
	e := fmt.Errorf("%s: %w", msg, err)
	return &StorageError{Message: e.Error()}
}

func NewStorageError(format string, a ...any) *StorageError {
	return &StorageError{Message: fmt.Sprintf(format, a...)}
}

func NewStorageErrorWithCode(code int, format string, a ...any) *StorageError {
	return &StorageError{Message: fmt.Sprintf(format, a...), Code: code}
}

// RollbackError marks an error raised inside a transaction that must not be
// committed.
type RollbackError struct {
	err error
}

func (e *RollbackError) Error() string {
	return e.err.Error()
}

func (e *RollbackError) Unwrap() error {
	return e.err
}

func WithRollback(err error) error {
	if err == nil {
		return nil
	}
	return &RollbackError{err: err}
}

func NeedsRollback(err error) bool {
	var rollback *RollbackError
	return errors.As(err, &rollback)
}
