package inventree

import (
	"errors"
	"fmt"
)

// ErrMisconfigured indicates the destination base URL or token is absent.
var ErrMisconfigured = errors.New("InvenTree base URL and token are required")

// UnavailableError indicates a network failure, timeout or 5xx response from
// the destination system.
type UnavailableError struct {
	StatusCode int // 0 for network-level failures
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("InvenTree unavailable: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("InvenTree unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// APIError is a non-transient rejection (4xx) from the destination API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("InvenTree rejected the request: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsUnavailable reports whether err stems from a transient destination outage.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}
