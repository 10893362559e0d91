package domain

import "errors"

// Storage-level outcomes shared by the repository layer and the modules.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoCapacity       = errors.New("no available slots")
	ErrDuplicateBooking = errors.New("class already booked by this user")
)
