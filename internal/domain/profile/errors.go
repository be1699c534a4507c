package profile

import "errors"

var (
	// ErrProfileNotFound is returned when no profile matches the lookup
	ErrProfileNotFound = errors.New("profile not found")
)
