// Package events fans out booking lifecycle notifications to interested
// sinks (message broker, live websocket feed). Delivery is best effort.
package events

import (
	"context"
	"errors"
	"time"
)

const TypeBookingCreated = "booking.created"

type BookingCreated struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	ClassID        string    `json:"class_id"`
	ClassName      string    `json:"class_name"`
	ClassStartTime time.Time `json:"class_start_time"`
	UserEmail      string    `json:"user_email"`
	UserName       string    `json:"user_name"`
	RemainingSlots int       `json:"remaining_slots"`
	TotalSlots     int       `json:"total_slots"`
	BookedAt       time.Time `json:"booked_at"`
}

type Publisher interface {
	PublishBookingCreated(ctx context.Context, ev BookingCreated) error
}

type Noop struct{}

func (Noop) PublishBookingCreated(context.Context, BookingCreated) error { return nil }

// Multi delivers to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) PublishBookingCreated(ctx context.Context, ev BookingCreated) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishBookingCreated(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
