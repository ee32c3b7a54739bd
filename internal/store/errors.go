package store

import (
	"github.com/pkg/errors"

	"blog/internal/db"
)

var (
	// ErrNoSuchEntity is returned by Modify and Remove when the referenced
	// row no longer exists.
	ErrNoSuchEntity = errors.New("store: no such entity")
	// ErrUnknownColumn is returned when a Predicate names a column the
	// table does not have.
	ErrUnknownColumn = errors.New("store: unknown column")
)

// IntegrityError is a constraint violation: missing required field, broken
// foreign key or primary key collision. The enclosing scope is rolled back.
type IntegrityError struct {
	Op    string
	Table string
	Err   error
}

func (e *IntegrityError) Error() string {
	return "store: " + e.Op + " " + e.Table + ": integrity: " + e.Err.Error()
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// StorageError is an engine failure such as I/O or lock contention. It is
// never retried by the store.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	s := "store: " + e.Op
	if e.Table != "" {
		s += " " + e.Table
	}
	return s + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Temporary reports whether the failure was lock contention that outlasted
// the busy timeout, so that running the scope again may succeed.
func (e *StorageError) Temporary() bool {
	return db.IsBusy(e.Err)
}

func integrity(op, table string, err error) error {
	return &IntegrityError{Op: op, Table: table, Err: err}
}

// classify turns a driver error into an IntegrityError or StorageError.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if db.IsConstraint(err) {
		return &IntegrityError{Op: op, Table: table, Err: err}
	}
	return &StorageError{Op: op, Table: table, Err: err}
}
