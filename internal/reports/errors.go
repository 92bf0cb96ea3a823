package reports

import "errors"

var (
	// ErrNotFound indicates an upload or artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooLarge indicates an upload over the configured size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrQueueUnavailable indicates asynchronous generation is not configured.
	ErrQueueUnavailable = errors.New("render queue unavailable")
)
