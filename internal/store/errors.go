package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed input. No state changes.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when input clashes with existing records.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersist is returned when the collection could not be written.
	// The in-memory change is rolled back.
	ErrPersist = errors.New("persist failed")
)

var (
	ErrInvalidName         = fmt.Errorf("%w: name must be non-empty and contain no digits", ErrValidation)
	ErrInvalidDNI          = fmt.Errorf("%w: DNI must be a non-empty number", ErrValidation)
	ErrEmptyEventType      = fmt.Errorf("%w: event type is required", ErrValidation)
	ErrEmptyDate           = fmt.Errorf("%w: date is required", ErrValidation)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrDuplicateDNI        = fmt.Errorf("%w: a client with that DNI already exists", ErrConflict)
	ErrDateTaken           = fmt.Errorf("%w: date already booked", ErrConflict)
	ErrClientNotRegistered = fmt.Errorf("%w: client not registered", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation", ErrNotFound)
)
