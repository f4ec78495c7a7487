package domain

import "errors"

// Failure taxonomy for the request pipeline. Adapters and stores wrap these
// with fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	ErrLimitExceeded       = errors.New("free usage limit exceeded")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected")
	ErrTimeout             = errors.New("provider timeout")
	ErrStorage             = errors.New("storage failure")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
)
