// Package server provides the HTTP REST API for the site builder.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/spa-builder/internal/project"
)

// ErrInvalidCredentials indicates a failed login attempt.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrBusy indicates a build or update is already running. The pipeline
// owns one dev server and one browser session, so runs are serialized.
type ErrBusy struct{}

func (e *ErrBusy) Error() string {
	return "a build is already running"
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var notFound *project.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrBusy:
		return http.StatusConflict
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
