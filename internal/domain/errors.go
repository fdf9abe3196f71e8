package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested product or address does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrServerOffline indicates the store API is unreachable
	ErrServerOffline = errors.New("store server is unreachable")

	// ErrUnauthenticated indicates the session token is missing, expired or rejected
	ErrUnauthenticated = errors.New("not signed in or session expired")

	// ErrValidation indicates client-side input validation failed
	ErrValidation = errors.New("validation failed")
)

// FetchError wraps a failure to read from the store
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError wraps a failed create, update or delete
type MutationError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// ValidationError is returned when user input is rejected before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets callers match with errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error { return ErrValidation }
