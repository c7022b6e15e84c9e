package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrAuthRequired     = errors.New("authentication required")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyRemoved   = errors.New("already removed")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrPaymentTimeout   = errors.New("payment timed out")
	ErrStoreUnavailable = errors.New("store unavailable")
)
