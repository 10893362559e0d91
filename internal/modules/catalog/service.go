package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/metrics"
	"fitnessbooking/internal/pkg/sanitize"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/pkg/validator"
	"fitnessbooking/internal/repository"
)

type Service struct {
	classes ClassRepository
	clock   *tz.Normalizer
	metrics metrics.Recorder
}

func NewService(classes ClassRepository, clock *tz.Normalizer, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		classes: classes,
		clock:   clock,
		metrics: rec,
	}
}

func (s *Service) CreateClass(ctx context.Context, req CreateClassRequest) (*domain.FitnessClass, error) {
	req.Name = sanitize.Text(req.Name)
	req.Instructor = sanitize.Text(req.Instructor)
	req.DateTime = strings.TrimSpace(req.DateTime)

	if fields := validator.Validate(req); fields != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, &validator.FieldError{Fields: fields})
	}

	start, err := s.clock.Normalize(req.DateTime, req.Timezone)
	if err != nil {
		if errors.Is(err, tz.ErrInvalidTime) {
			return nil, ErrInvalidTime
		}
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	c := &domain.FitnessClass{
		Name:           req.Name,
		Instructor:     req.Instructor,
		StartTime:      start,
		TotalSlots:     req.AvailableSlots,
		RemainingSlots: req.AvailableSlots,
	}
	if err := s.classes.Create(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.RecordClassCreated()
	return c, nil
}

// ListClasses returns classes ordered by start time. With upcomingOnly set,
// classes that already started are left out.
func (s *Service) ListClasses(ctx context.Context, upcomingOnly bool) ([]domain.FitnessClass, error) {
	var f repository.ClassFilter
	if upcomingOnly {
		now := s.clock.Now()
		f.StartsAfter = &now
	}
	return s.classes.List(ctx, f)
}

func (s *Service) GetClass(ctx context.Context, id string) (*domain.FitnessClass, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	return s.classes.GetByID(ctx, id)
}
