package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Classify maps a completion error onto one of ErrQuotaExhausted,
// ErrBackendMalformedResponse or ErrBackendOtherFailure. The original error
// stays in the chain. Classify(nil) is nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrQuotaExhausted) ||
		errors.Is(err, ErrBackendMalformedResponse) ||
		errors.Is(err, ErrBackendOtherFailure) {
		return err
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && isQuota(apiErr) {
		return wrap(ErrQuotaExhausted, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return wrap(ErrBackendMalformedResponse, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "limits exceeded"):
		return wrap(ErrQuotaExhausted, err)
	case strings.Contains(msg, "Expecting value"),
		strings.Contains(msg, "malformed"):
		return wrap(ErrBackendMalformedResponse, err)
	}
	return wrap(ErrBackendOtherFailure, err)
}

func isQuota(e *APIError) bool {
	if strings.Contains(e.Message, "limits exceeded") {
		return true
	}
	if e.Status != http.StatusTooManyRequests {
		return false
	}
	code := strings.ToLower(e.Code)
	if code == "resource_exhausted" {
		return isDailyLimit(e)
	}
	return strings.Contains(code, "quota")
}

// isDailyLimit tells a spent daily quota from a per-minute rate limit. Both
// come back as 429 RESOURCE_EXHAUSTED; only the former is worth stopping for.
func isDailyLimit(e *APIError) bool {
	for _, id := range e.QuotaIDs {
		if strings.Contains(strings.ToLower(id), "perday") {
			return true
		}
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "per day") || strings.Contains(msg, "daily")
}

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
