package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin client
var (
	// Session errors
	ErrNoCredential = errors.New("no credential")
	ErrUnauthorized = errors.New("unauthorized")

	// Response errors
	ErrNotFound        = errors.New("not found")
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// Command errors
	ErrRequiredField        = errors.New("required field missing")
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
