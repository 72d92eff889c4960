package store

import "fmt"

// StorageError represents a failure in the retention store.
type StorageError struct {
	// Op is the operation that failed: "put_latest", "put_rolling",
	// "ingest", "list", "evict".
	Op string

	// Path is the file or directory involved.
	Path string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [op=%s, path=%s]: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(op, path string, cause error) *StorageError {
	return &StorageError{Op: op, Path: path, Cause: cause}
}
