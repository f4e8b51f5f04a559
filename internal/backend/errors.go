package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExhausted means the backend (or the platform) refuses further
	// answers. It is the only error that stops processing.
	ErrQuotaExhausted           = errors.New("quota exhausted")
	ErrBackendMalformedResponse = errors.New("malformed backend response")
	ErrBackendOtherFailure      = errors.New("backend failure")
)

// APIError is an error reported by a completion provider.
type APIError struct {
	Status  int
	Code    string
	Message string
	// QuotaIDs lists the provider quotas the request violated, when reported.
	QuotaIDs []string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}
