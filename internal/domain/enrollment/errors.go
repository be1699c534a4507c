package enrollment

import "errors"

var (
	// ErrNotFound is returned when no enrollment matches the lookup
	ErrNotFound = errors.New("enrollment not found")

	ErrInternal = errors.New("internal error")
)
