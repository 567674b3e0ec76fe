package domain

import "errors"

// Storage errors, returned by every repository backend.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidID      = errors.New("invalid id")
)
