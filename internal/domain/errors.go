package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrUnknownBackend = errors.New("unknown store backend")
)
