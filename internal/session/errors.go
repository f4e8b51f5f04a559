package session

import "errors"

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTooManyAttempts      = errors.New("too many failed enrollment attempts")
)
