package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an HTTP error response from the registry: the request
// completed and the server answered with a non-2xx status. Transport
// failures (no response, undecodable body) are plain wrapped errors,
// never *Error.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registry: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("registry: %s (status %d)", e.Message, e.StatusCode)
}

// terminalStatuses are application-level failures that retrying cannot
// fix: the request itself is at fault, not the server's current state.
var terminalStatuses = map[int]bool{
	http.StatusBadRequest:       true, // 400
	http.StatusForbidden:        true, // 403
	http.StatusConflict:         true, // 409
	http.StatusFailedDependency: true, // 424
}

// IsTerminal reports whether err is a registry error in the fixed
// terminal status set. Terminal errors must never be retried.
func IsTerminal(err error) bool {
	var regErr *Error
	return errors.As(err, &regErr) && terminalStatuses[regErr.StatusCode]
}

// IsNotFound reports whether err is a registry 404. On the search
// endpoint a 404 means "no matches", which is an absence rather than
// a failure.
func IsNotFound(err error) bool {
	var regErr *Error
	return errors.As(err, &regErr) && regErr.StatusCode == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0 when err is
// not a registry error (a transport failure).
func StatusOf(err error) int {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.StatusCode
	}
	return 0
}
