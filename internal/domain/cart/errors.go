package cart

import "errors"

var (
	// ErrCartNotFound is returned when no cart matches the lookup
	ErrCartNotFound = errors.New("cart not found")
)
