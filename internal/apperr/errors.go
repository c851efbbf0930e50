// Package apperr defines the error kinds surfaced by tool operations.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams = errors.New("invalid parameters")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrPathEscape    = errors.New("path escapes vault root")
	ErrVaultNotFound = errors.New("vault not found")
)

// RollbackError is the fatal case: a mutation failed and restoring the
// pre-mutation backup failed too. It always names the preserved backup
// so the operator can recover the file by hand.
type RollbackError struct {
	BackupPath string
	MutateErr  error
	RestoreErr error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed after mutation error (%v): %v; backup preserved at %s",
		e.MutateErr, e.RestoreErr, e.BackupPath)
}

func (e *RollbackError) Unwrap() error { return e.MutateErr }
