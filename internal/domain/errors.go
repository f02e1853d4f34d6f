package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the record is absent from the store that was asked.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned before any store is touched.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration marks permanent setup faults. These are never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidCredentials is a configuration error raised by the remote store
	// when it rejects our credentials.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrConfiguration)

	// ErrProjectNotFound is a configuration error raised when the remote
	// database or project we point at does not exist.
	ErrProjectNotFound = fmt.Errorf("%w: project not found", ErrConfiguration)

	// ErrNetworkDisabled is returned by the remote store while its network
	// channel is switched off.
	ErrNetworkDisabled = errors.New("remote network disabled")
)

// NotFound builds a not-found error for a record kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s not found: %s: %w", kind, id, ErrNotFound)
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfiguration reports whether err is a permanent configuration fault.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
