package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// StorageError is returned for storage failures callers are expected to match on.
type StorageError struct {
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrStorageConflict marks transient failures caused by concurrent writers:
// serialization failures, deadlocks and lock timeouts.
var ErrStorageConflict = &StorageError{Message: "storage conflict"}

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// TranslateError wraps PostgreSQL conflict errors with ErrStorageConflict and
// returns every other error unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %s (%s)", ErrStorageConflict, pgErr.Message, pgErr.Code)
		}
	}
	return err
}

// IsConflict reports whether err is a transient storage conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStorageConflict)
}
