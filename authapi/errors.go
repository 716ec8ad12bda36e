package authapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable is wrapped around transport-level failures (DNS, refused
// connections, timeouts) where no HTTP response was received.
var ErrUnavailable = errors.New("auth api unavailable")

// APIError is a non-2xx response from the Auth API. Detail carries the
// server's human-readable message from the {"detail": ...} body, when one
// was present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("auth api: %s (status %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("auth api: status %d", e.Status)
}

// IsAuthFailure reports whether err is an APIError caused by rejected
// credentials rather than a transport or server fault.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}
