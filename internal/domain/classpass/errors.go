package classpass

import "errors"

var (
	// ErrInvalidCredits is returned when the credit count is negative
	ErrInvalidCredits = errors.New("invalid credit count")

	// ErrPurchaseNotFound is returned when no purchase matches the lookup
	ErrPurchaseNotFound = errors.New("class pass purchase not found")

	ErrInternal = errors.New("internal error")
)
