package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/events"
	"fitnessbooking/internal/metrics"
	"fitnessbooking/internal/pkg/keylock"
	"fitnessbooking/internal/pkg/sanitize"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/pkg/validator"
	"fitnessbooking/internal/repository"
)

const publishTimeout = 500 * time.Millisecond

const unknownClassName = "Unknown"

type Service struct {
	store   AdmissionStore
	ledger  BookingLedger
	classes ClassLookup
	locks   *keylock.Map
	clock   *tz.Normalizer
	events  events.Publisher
	metrics metrics.Recorder
}

func NewService(
	store AdmissionStore,
	ledger BookingLedger,
	classes ClassLookup,
	clock *tz.Normalizer,
	publisher events.Publisher,
	rec metrics.Recorder,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		store:   store,
		ledger:  ledger,
		classes: classes,
		locks:   keylock.New(),
		clock:   clock,
		events:  publisher,
		metrics: rec,
	}
}

// CreateBooking admits one booking. Every check and write for a given class
// happens inside that class's critical section and one storage transaction,
// so two requests for the same class can never both pass the duplicate or
// capacity checks. The booking event is handed to the publisher before the
// section is released. Requests for different classes proceed independently.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.BookingDetails, error) {
	started := time.Now()

	req.ClassID = strings.TrimSpace(req.ClassID)
	req.UserEmail = sanitize.Email(req.UserEmail)
	req.UserName = sanitize.Text(req.UserName)

	if fields := validator.Validate(req); fields != nil {
		err := fmt.Errorf("%w: %w", ErrValidation, &validator.FieldError{Fields: fields})
		s.metrics.RecordBookingRejected(rejectReason(err))
		return nil, err
	}

	details, err := s.admit(ctx, req)
	if err != nil {
		s.metrics.RecordBookingRejected(rejectReason(err))
		return nil, err
	}
	s.metrics.RecordBookingAdmitted(time.Since(started))

	log.Printf("booking_admitted booking_id=%s class_id=%s remaining_slots=%d",
		details.ID, details.ClassID, details.remaining)

	return &details.BookingDetails, nil
}

type admitted struct {
	domain.BookingDetails
	remaining int
	total     int
}

func (s *Service) admit(ctx context.Context, req CreateBookingRequest) (*admitted, error) {
	unlock, err := s.locks.Lock(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out admitted
	err = s.store.Atomic(ctx, func(tx repository.AdmissionTx) error {
		class, err := tx.GetClass(ctx, req.ClassID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if class.HasStarted(now) {
			return ErrClassStarted
		}

		exists, err := tx.HasBooking(ctx, class.ID, req.UserEmail)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateBooking
		}

		if err := tx.ReserveSlot(ctx, class.ID); err != nil {
			return err
		}

		b := &domain.Booking{
			ClassID:   class.ID,
			UserEmail: req.UserEmail,
			UserName:  req.UserName,
			CreatedAt: now,
		}
		if err := tx.AppendBooking(ctx, b); err != nil {
			return err
		}

		out = admitted{
			BookingDetails: domain.BookingDetails{
				Booking:        *b,
				ClassName:      class.Name,
				ClassStartTime: class.StartTime,
			},
			remaining: class.RemainingSlots - 1,
			total:     class.TotalSlots,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Still under the class lock: events for one class leave in commit order.
	s.publish(ctx, &out)
	return &out, nil
}

func (s *Service) publish(ctx context.Context, a *admitted) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := events.BookingCreated{
		Type:           events.TypeBookingCreated,
		BookingID:      a.ID,
		ClassID:        a.ClassID,
		ClassName:      a.ClassName,
		ClassStartTime: a.ClassStartTime,
		UserEmail:      a.UserEmail,
		UserName:       a.UserName,
		RemainingSlots: a.remaining,
		TotalSlots:     a.total,
		BookedAt:       a.CreatedAt,
	}
	if err := s.events.PublishBookingCreated(pubCtx, ev); err != nil {
		log.Printf("booking_event_failed booking_id=%s class_id=%s error=%q", a.ID, a.ClassID, err.Error())
	}
}

// ListUserBookings returns the user's bookings oldest first, each joined with
// the class it references.
func (s *Service) ListUserBookings(ctx context.Context, email string) ([]domain.BookingDetails, error) {
	email = sanitize.Email(email)
	if !validator.Var(email, "required,email") {
		return nil, fmt.Errorf("%w: email must be a valid address", ErrValidation)
	}

	rows, err := s.ledger.ListForUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.BookingDetails{}, nil
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, b := range rows {
		if _, ok := seen[b.ClassID]; !ok {
			seen[b.ClassID] = struct{}{}
			ids = append(ids, b.ClassID)
		}
	}

	classes, err := s.classes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookingDetails, 0, len(rows))
	for _, b := range rows {
		d := domain.BookingDetails{Booking: b, ClassName: unknownClassName}
		if c, ok := classes[b.ClassID]; ok {
			d.ClassName = c.Name
			d.ClassStartTime = c.StartTime
		}
		out = append(out, d)
	}
	return out, nil
}
