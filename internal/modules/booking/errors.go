package booking

import (
	"errors"

	"fitnessbooking/internal/domain"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrClassStarted     = errors.New("cannot book a class that has already started")
	ErrNotFound         = domain.ErrNotFound
	ErrDuplicateBooking = domain.ErrDuplicateBooking
	ErrNoCapacity       = domain.ErrNoCapacity
)

// rejectReason maps an admission error to a metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrClassStarted):
		return "class_started"
	case errors.Is(err, ErrDuplicateBooking):
		return "duplicate"
	case errors.Is(err, ErrNoCapacity):
		return "no_capacity"
	default:
		return "error"
	}
}
