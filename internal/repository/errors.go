package repository

import "errors"

// ErrNotFound is returned when an operation targets a task id with no row.
var ErrNotFound = errors.New("task not found")

// StorageError wraps a storage-engine failure (I/O, corruption). These are
// fatal for the operation that hit them and are never retried internally.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
