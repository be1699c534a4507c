package program

import "errors"

var (
	// ErrProgramNotFound is returned when no program matches the lookup
	ErrProgramNotFound = errors.New("program not found")
)
