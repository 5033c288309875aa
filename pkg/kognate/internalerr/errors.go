package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvariant     = errors.New("invariant violation")
	ErrUnknownMethod = errors.New("unknown clustering method")
)
