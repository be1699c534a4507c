package transaction

import "errors"

var (
	// ErrNotFound is returned when no transaction matches the lookup
	ErrNotFound = errors.New("transaction not found")

	ErrInternal = errors.New("internal error")
)
