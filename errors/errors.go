package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrInvalidIdentifier  = fmt.Errorf("%w: invalid identifier", ErrInvalidInput)
	ErrInvalidLimit       = fmt.Errorf("%w: limit must be greater or equal to 1", ErrInvalidInput)
	ErrConflict           = fmt.Errorf("conflict")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrNotFound           = fmt.Errorf("not found")
	ErrUnknownParticipant = fmt.Errorf("unknown participant")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
)
