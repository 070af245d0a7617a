package marketdata

import (
	"errors"
	"fmt"
)

// ServiceError reports a non-2xx response from the service.
type ServiceError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// NetworkError reports a transport failure: refused connection, DNS, timeout.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("execute request %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var svc *ServiceError
	return errors.As(err, &svc) && svc.StatusCode == 404
}

// Describe returns a short operator-facing label for err, suitable for a
// status banner.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var svc *ServiceError
	if errors.As(err, &svc) {
		switch {
		case svc.StatusCode == 404:
			return "Not found"
		case svc.StatusCode >= 500:
			return fmt.Sprintf("Service error (%d)", svc.StatusCode)
		default:
			return fmt.Sprintf("Request rejected (%d)", svc.StatusCode)
		}
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return classifyTransport(netErr.Err)
	}
	return "Request failed"
}
