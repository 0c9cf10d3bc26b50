// Package apperrors holds the error taxonomy shared by the request workflow,
// timeline and reporting packages.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched with errors.Is
var (
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotFound               = errors.New("not found")
	ErrAggregation            = errors.New("timeline aggregation failed")
	ErrValidation             = errors.New("validation failed")
)

// TransitionError reports a status change missing from the transition table.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictError reports a conditional status write that affected zero rows.
type ConflictError struct {
	RequestID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("request %s was modified concurrently, re-fetch and retry", e.RequestID)
}

func (e *ConflictError) Unwrap() error { return ErrConcurrentModification }

// NotFoundError covers both missing resources and resources the caller may not see.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AggregationError reports the timeline source that failed to read.
type AggregationError struct {
	RequestID string
	Source    string
	Err       error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("timeline for request %s: source %s failed: %v", e.RequestID, e.Source, e.Err)
}

// Is matches ErrAggregation while Unwrap exposes the underlying read error.
func (e *AggregationError) Is(target error) bool { return target == ErrAggregation }

func (e *AggregationError) Unwrap() error { return e.Err }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Constructors

func InvalidTransition(from, to string) error { return &TransitionError{From: from, To: to} }

func ConcurrentModification(requestID string) error { return &ConflictError{RequestID: requestID} }

func NotFound(resource, id string) error { return &NotFoundError{Resource: resource, ID: id} }

func Validation(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

func Aggregation(requestID, source string, err error) error {
	return &AggregationError{RequestID: requestID, Source: source, Err: err}
}

// HTTPStatus maps an error to the status code handlers respond with.
// Aggregation is checked first since it also unwraps to the source error.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAggregation):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a stable machine-readable code for an error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAggregation):
		return "aggregation_failure"
	case errors.Is(err, ErrValidation):
		return "validation_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "internal_error"
	}
}
