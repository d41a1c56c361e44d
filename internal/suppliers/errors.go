package suppliers

import (
	"errors"
	"fmt"

	"github.com/partbridge/partbridge/internal/entities"
)

// ErrNotFound indicates the supplier has no part matching the requested number.
var ErrNotFound = errors.New("supplier has no part matching the requested number")

// MisconfiguredError indicates required credentials are absent or rejected.
// Distinguished from UnavailableError so operators can tell a configuration
// problem from a transient outage.
type MisconfiguredError struct {
	Supplier entities.Supplier
	Reason   string
}

func (e *MisconfiguredError) Error() string {
	return fmt.Sprintf("%s is not configured: %s", e.Supplier.DisplayName(), e.Reason)
}

// UnavailableError indicates a network failure, timeout or 5xx response from
// the supplier API. Retrying later may succeed.
type UnavailableError struct {
	Supplier   entities.Supplier
	StatusCode int // 0 for network-level failures
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API unavailable: HTTP %d", e.Supplier.DisplayName(), e.StatusCode)
	}
	return fmt.Sprintf("%s API unavailable: %v", e.Supplier.DisplayName(), e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsMisconfigured reports whether err stems from missing or rejected credentials.
func IsMisconfigured(err error) bool {
	var m *MisconfiguredError
	return errors.As(err, &m)
}

// IsUnavailable reports whether err stems from a transient supplier outage.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}
