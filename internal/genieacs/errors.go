package genieacs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCircuitOpen is returned while the breaker refuses calls to a failing ACS
	ErrCircuitOpen = errors.New("genieacs: circuit breaker is open")

	// ErrInvalidResponse means the ACS answered 2xx with a body we cannot decode
	ErrInvalidResponse = errors.New("genieacs: invalid response")
)

// APIError is a non-2xx answer from the NBI
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("genieacs api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("genieacs api error: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// ConnectionError wraps transport failures (DNS, refused, timeout)
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("genieacs connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// StatusCode extracts the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
