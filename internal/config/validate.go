package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.StoreKind {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store kind %q", ErrInvalidConfig, c.StoreKind)
	}
	switch c.Backend {
	case BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: empty store path", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests per second must be positive", ErrInvalidConfig)
	}
	if c.EnrollMaxAttempts < 0 {
		return fmt.Errorf("%w: negative enroll attempts", ErrInvalidConfig)
	}
	return nil
}
