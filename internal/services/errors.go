package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
)

var (
	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = errors.New("not_found")
	// ErrForbidden is returned when the actor does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Login for any email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	// ErrUnauthenticated is returned when no valid bearer token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError lists every input field that failed and why.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newValidationError returns nil when errs is empty.
func newValidationError(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: validation.Errors{field: {message}}}
}
