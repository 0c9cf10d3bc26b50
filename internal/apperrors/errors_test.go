package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchSentinels(t *testing.T) {
	readErr := errors.New("connection reset")

	cases := []struct {
		name     string
		err      error
		sentinel error
		status   int
		code     string
	}{
		{"transition", InvalidTransition("submitted", "completed"), ErrInvalidTransition, http.StatusUnprocessableEntity, "invalid_transition"},
		{"conflict", ConcurrentModification("r-1"), ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
		{"not found", NotFound("request", "r-1"), ErrNotFound, http.StatusNotFound, "not_found"},
		{"validation", Validation("note", "required"), ErrValidation, http.StatusBadRequest, "validation_failure"},
		{"aggregation", Aggregation("r-1", "comments", readErr), ErrAggregation, http.StatusServiceUnavailable, "aggregation_failure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
			assert.Equal(t, tc.status, HTTPStatus(wrapped))
			assert.Equal(t, tc.code, Code(wrapped))
		})
	}
}

func TestAggregationErrorKeepsCause(t *testing.T) {
	readErr := errors.New("connection reset")
	err := Aggregation("r-1", "notifications", readErr)

	assert.ErrorIs(t, err, readErr)

	var aggErr *AggregationError
	assert.True(t, errors.As(err, &aggErr))
	assert.Equal(t, "notifications", aggErr.Source)
}

func TestUnknownErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, "internal_error", Code(err))
}

func TestAggregationWinsOverWrappedCause(t *testing.T) {
	err := Aggregation("r-1", "request_events", NotFound("table", "request_events"))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, "aggregation_failure", Code(err))
}
