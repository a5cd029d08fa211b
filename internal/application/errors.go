package application

import (
	"errors"
	"fmt"
)

// The four caller-visible failure classes. None of them is transient: the
// handler surfaces each as a distinct HTTP outcome and nothing is retried.

// ValidationError reports malformed or missing input. Fields maps field name
// to a human-readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: fmt.Sprintf(format, args...)}}
}

// AccessDeniedError reports a failed role or ownership check.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string { return "access denied: " + e.Reason }

func denied(reason string) *AccessDeniedError { return &AccessDeniedError{Reason: reason} }

// InvalidStateError reports a transition that is not legal from the current
// status, including lost claim races and any mutation of a terminal request.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return "invalid state: " + e.Reason }

func invalidState(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unresolvable resource id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return e.Resource + " " + e.ID + " not found" }

func notFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsValidation etc. let handlers map errors to status codes without importing
// the concrete types everywhere.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsAccessDenied(err error) bool {
	var e *AccessDeniedError
	return errors.As(err, &e)
}

func IsInvalidState(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
