// Package common provides shared constants, types, and utilities
// used across the SNX client.
package common

import "errors"

// Sentinel errors. Check them with errors.Is().
var (
	// Service errors.
	ErrSocketSetup         = errors.New("could not set up service socket")
	ErrServiceUnavailable  = errors.New("tunnel service unavailable")
	ErrInvalidResponse     = errors.New("invalid service response")
	ErrServiceError        = errors.New("tunnel service returned an error")
	ErrAlreadyConnected    = errors.New("connection already active")
	ErrMissingCredentials  = errors.New("required fields are missing")
	ErrInvalidSearchDomain = errors.New("invalid search domain")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")

	// History errors.
	ErrHistoryDisabled = errors.New("history is disabled")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
