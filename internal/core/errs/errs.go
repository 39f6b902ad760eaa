// Package errs defines the error taxonomy shared by the attendance and
// scoring services. Handlers map these onto HTTP status codes in one place.
package errs

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing resource by kind and id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ValidationError names the violated rule, optionally per field.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Rule
	}
	return e.Field + ": " + e.Rule
}

// ExpiredTokenError is returned when a check-in arrives after the
// session token's expiry.
type ExpiredTokenError struct {
	Token string
}

func (e *ExpiredTokenError) Error() string { return "attendance token expired" }

// AlreadyFinalizedError guards writes against a finalized session.
type AlreadyFinalizedError struct {
	SessionID string
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("session %q is finalized", e.SessionID)
}

// InvalidStateTransitionError reports a workflow rule violation.
type InvalidStateTransitionError struct {
	From   string
	Action string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %s", e.Action, e.From)
}

// ConflictError reports a uniqueness violation (duplicate open session,
// concurrent config activation).
type ConflictError struct {
	Rule string
}

func (e *ConflictError) Error() string { return e.Rule }

func NotFound(resource, id string) error { return &NotFoundError{Resource: resource, ID: id} }

func Validation(rule string) error { return &ValidationError{Rule: rule} }

func ValidationField(field, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

func Conflict(rule string) error { return &ConflictError{Rule: rule} }

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsExpiredToken(err error) bool {
	var t *ExpiredTokenError
	return errors.As(err, &t)
}

func IsAlreadyFinalized(err error) bool {
	var t *AlreadyFinalizedError
	return errors.As(err, &t)
}

func IsInvalidStateTransition(err error) bool {
	var t *InvalidStateTransitionError
	return errors.As(err, &t)
}

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}
