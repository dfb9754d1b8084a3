package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// StorageError envuelve errores del driver (pgx) para que no se filtren
// tipos específicos del storage a los callers.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Storagef wraps a driver error with the operation that produced it.
func Storagef(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is a storage failure, as opposed to
// ErrNotFound / ErrConflict which are part of the domain contract.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
