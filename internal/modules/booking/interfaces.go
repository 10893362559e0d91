package booking

import (
	"context"

	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/repository"
)

// AdmissionStore runs one admission decision as a single storage transaction
type AdmissionStore interface {
	Atomic(ctx context.Context, fn func(tx repository.AdmissionTx) error) error
}

// BookingLedger is the read side of the booking ledger
type BookingLedger interface {
	ListForUser(ctx context.Context, email string) ([]domain.Booking, error)
}

// ClassLookup resolves the classes referenced by ledger entries
type ClassLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.FitnessClass, error)
}
