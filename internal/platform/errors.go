package platform

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("platform unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadToken     = errors.New("malformed session token")
)

// APIError is an application-level error reported by the platform, e.g.
// {"error": {"code": "quota", "message": "limits exceeded: AAQ"}}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("platform error %d: %s", e.Status, e.Message)
}
