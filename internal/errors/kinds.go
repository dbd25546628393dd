package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error by how the client reacts to it
type Kind int

const (
	KindTransient Kind = iota
	KindValidation
	KindNotFound
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	default:
		return "transient"
	}
}

var (
	// ErrNotFound is returned when the activity id is unknown to the service or the store
	ErrNotFound = stderrors.New("activity not found")
	// ErrAuth is returned when the credential is missing, rejected or expired
	ErrAuth = stderrors.New("not authenticated")
	// ErrTransient marks a failure worth retrying (network, timeout, 5xx)
	ErrTransient = stderrors.New("temporary failure")
)

// ValidationError reports rejected input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for field
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err to a ValidationError if it carries one
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// TransientSyncError reports a minutes write that exhausted its retries
type TransientSyncError struct {
	ActivityID string
	Attempts   int
	Err        error
}

func (e *TransientSyncError) Error() string {
	return fmt.Sprintf("saving minutes for %s failed after %d attempt(s): %v", e.ActivityID, e.Attempts, e.Err)
}

func (e *TransientSyncError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransient) match regardless of the wrapped cause
func (e *TransientSyncError) Is(target error) bool { return target == ErrTransient }

// Transient wraps err so that it classifies as transient
func Transient(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Classify maps err onto a Kind. Unrecognized errors are treated as transient.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindTransient
	case stderrors.Is(err, ErrAuth):
		return KindAuth
	case stderrors.Is(err, ErrNotFound):
		return KindNotFound
	}
	if _, ok := AsValidation(err); ok {
		return KindValidation
	}
	return KindTransient
}

// IsNotFound reports whether err means the activity no longer exists
func IsNotFound(err error) bool { return stderrors.Is(err, ErrNotFound) }

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool { return stderrors.Is(err, ErrAuth) }
