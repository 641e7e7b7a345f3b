package library

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Authenticate when no user row matches
// the supplied username/password pair.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports a uniqueness violation, such as a duplicate username
// or borrowing an item that is already on the user's list.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// StoreError wraps a driver-level failure so callers can report it without
// inspecting driver error strings.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
