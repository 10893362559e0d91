package repository

import (
	"context"

	"fitnessbooking/internal/domain"

	"gorm.io/gorm"
)

// AdmissionTx is the view of storage available inside one admission
// transaction. Every call observes and mutates the same transaction.
type AdmissionTx interface {
	GetClass(ctx context.Context, id string) (*domain.FitnessClass, error)
	HasBooking(ctx context.Context, classID, email string) (bool, error)
	ReserveSlot(ctx context.Context, classID string) error
	AppendBooking(ctx context.Context, b *domain.Booking) error
}

// Store runs admission decisions as a single database transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomic runs fn in a transaction; any error returned by fn rolls back every
// write made through tx.
func (s *Store) Atomic(ctx context.Context, fn func(tx AdmissionTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&admissionTx{
			classes:  NewClassRepository(tx),
			bookings: NewBookingRepository(tx),
		})
	})
}

type admissionTx struct {
	classes  *ClassRepository
	bookings *BookingRepository
}

func (t *admissionTx) GetClass(ctx context.Context, id string) (*domain.FitnessClass, error) {
	return t.classes.GetByID(ctx, id)
}

func (t *admissionTx) HasBooking(ctx context.Context, classID, email string) (bool, error) {
	return t.bookings.ExistsForUser(ctx, classID, email)
}

func (t *admissionTx) ReserveSlot(ctx context.Context, classID string) error {
	return t.classes.ReserveSlot(ctx, classID)
}

func (t *admissionTx) AppendBooking(ctx context.Context, b *domain.Booking) error {
	return t.bookings.Append(ctx, b)
}
