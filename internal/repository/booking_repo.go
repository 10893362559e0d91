package repository

import (
	"context"
	"errors"
	"strings"

	"fitnessbooking/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// BookingRepository is the append-only booking ledger.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:        m.ID,
		ClassID:   m.ClassID,
		UserEmail: m.UserEmail,
		UserName:  m.UserName,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:        b.ID,
		ClassID:   b.ClassID,
		UserEmail: b.UserEmail,
		UserName:  b.UserName,
		CreatedAt: b.CreatedAt.UTC(),
	}
}

// Append inserts b. An existing (class, email) pair is reported as
// domain.ErrDuplicateBooking; rows are never overwritten.
func (r *BookingRepository) Append(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isUniqueConstraintError(tx.Error) {
			return domain.ErrDuplicateBooking
		}
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) ExistsForUser(ctx context.Context, classID, email string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("class_id = ? AND user_email = ?", classID, email).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) ListForUser(ctx context.Context, email string) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at asc").
		Order("id asc").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) CountForClass(ctx context.Context, classID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).Where("class_id = ?", classID).Count(&cnt).Error
	return cnt, err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
