package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrWorkBusy           = errors.New("work directory already has a writer")
	ErrNoText             = errors.New("no text extracted")
	ErrBackendUnavailable = errors.New("detection backend unavailable")
)
