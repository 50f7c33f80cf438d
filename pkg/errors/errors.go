// Package errors defines the sentinel errors shared across the library
// server and their mapping onto HTTP status codes.
package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrBookNotFound marks a lookup for a book ID the catalog does not hold.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidInput marks a caller-supplied value that cannot be used.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable marks a backing store that could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// HTTPStatusCode maps an error chain onto the status code to serve.
// Unrecognized errors are internal failures.
func HTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
