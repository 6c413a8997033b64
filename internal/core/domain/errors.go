package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport          = errors.New("transport error")
	ErrValidation         = errors.New("invalid response from server")
	ErrInvalidSelection   = errors.New("invalid user selection")
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrPersistence        = errors.New("local storage write failed")
	ErrBlocked            = errors.New("local storage deletion blocked")
	ErrNotAuthenticated   = errors.New("no user logged in")
	ErrSessionNotFound    = errors.New("session not found")
)

// TransportError reports a failed HTTP round trip or a non-success status.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + ErrTransport.Error()
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ValidationError reports a response whose shape does not match what the
// operation expects. Problems lists one message per offending field.
type ValidationError struct {
	Op       string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Op + ": " + ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidSelectionError is returned when selecting a user that is not in
// the user cache.
type InvalidSelectionError struct {
	UserID string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("%s: unknown user %q", ErrInvalidSelection, e.UserID)
}

func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }

// StorageError wraps a local database failure. Kind is one of
// ErrStorageUnavailable, ErrPersistence or ErrBlocked.
type StorageError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == e.Kind }
