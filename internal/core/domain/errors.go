package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateFile is a business rejection: the same content hash already
// has a record. It is not a fault and triggers no rollback.
var ErrDuplicateFile = errors.New("duplicate file")

// ErrInvalidMedia is an error thrown when a file cannot be processed as media
var ErrInvalidMedia = errors.New("invalid media file")

// ErrLockTimeout is an error thrown when a resource lock cannot be acquired in time
var ErrLockTimeout = errors.New("lock timeout")

// ErrStoreUnavailable marks transient backend faults that are worth retrying
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrTransactionTimeout is an error thrown when the whole step pipeline exceeds its deadline
var ErrTransactionTimeout = errors.New("transaction timeout")

// ErrUserNotFound is an error thrown when a user is not found
var ErrUserNotFound = errors.New("user not found")

// StepError wraps the last retry's failure of a specific pipeline step
type StepError struct {
	Kind     StepKind
	Attempts int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
