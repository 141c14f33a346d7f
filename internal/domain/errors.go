package domain

import (
	"errors"
	"fmt"
)

const ReasonInvalidTransition = "invalid transition"

// ValidationError reports malformed input: unknown pack key, negative
// quantity, inconsistent event window.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown entity id
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports an invalid state transition or a stale write
// (revision mismatch). Operator surfaces show the reason; customer
// surfaces never do.
type ConflictError struct {
	Reason string
	From   ReservationStatus
	To     ReservationStatus
}

func (e *ConflictError) Error() string {
	if e.From != "" || e.To != "" {
		return fmt.Sprintf("%s: %s -> %s", e.Reason, e.From, e.To)
	}
	return e.Reason
}

// ServiceUnavailable reports a collaborator that is not configured,
// e.g. missing payment provider credentials.
type ServiceUnavailable struct {
	Service string
}

func (e *ServiceUnavailable) Error() string {
	return fmt.Sprintf("%s is not available", e.Service)
}

// ExternalServiceError wraps a failed call to a configured collaborator
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsServiceUnavailable(err error) bool {
	var su *ServiceUnavailable
	return errors.As(err, &su)
}
