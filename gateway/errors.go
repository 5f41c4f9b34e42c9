package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
)

// APIError is a non-2xx response from the backend. Message is the server's
// human readable message, surfaced to the user verbatim.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap lets callers match status classes with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	}
	return nil
}

// errorBody is the backend error payload: { "error": "..." }. Some
// endpoints answer with "message" instead.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Status: status, Method: method, Path: path}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Message = eb.Error
		if e.Message == "" {
			e.Message = eb.Message
		}
	}
	return e
}

// StatusOf returns the HTTP status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthorized)
}

func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// Message returns the server provided message for err, or fallback when
// the server sent none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Retryable reports whether a read that failed with err may be retried:
// transport failures, timeouts and 5xx. Authentication, validation,
// not-found and shape errors are final, as is caller cancellation.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	if errors.Is(err, apperrors.ErrUnexpectedShape) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
