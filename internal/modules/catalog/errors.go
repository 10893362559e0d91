package catalog

import (
	"errors"

	"fitnessbooking/internal/domain"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrInvalidTime = errors.New("class must be scheduled for a future time")
	ErrNotFound    = domain.ErrNotFound
)
