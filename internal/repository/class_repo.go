package repository

import (
	"context"
	"errors"
	"time"

	"fitnessbooking/internal/domain"

	"gorm.io/gorm"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ClassFilter narrows List results. The zero value lists every class.
type ClassFilter struct {
	StartsAfter *time.Time
}

func toDomainClass(m classModel) *domain.FitnessClass {
	return &domain.FitnessClass{
		ID:             m.ID,
		Name:           m.Name,
		Instructor:     m.Instructor,
		StartTime:      m.StartTime.UTC(),
		TotalSlots:     m.TotalSlots,
		RemainingSlots: m.RemainingSlots,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func toClassModel(c *domain.FitnessClass) classModel {
	return classModel{
		ID:             c.ID,
		Name:           c.Name,
		Instructor:     c.Instructor,
		StartTime:      c.StartTime.UTC(),
		TotalSlots:     c.TotalSlots,
		RemainingSlots: c.RemainingSlots,
		CreatedAt:      c.CreatedAt,
	}
}

func (r *ClassRepository) Create(ctx context.Context, c *domain.FitnessClass) error {
	m := toClassModel(c)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainClass(m)
	return nil
}

func (r *ClassRepository) GetByID(ctx context.Context, id string) (*domain.FitnessClass, error) {
	var m classModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainClass(m), nil
}

// GetByIDs returns the classes found among ids, keyed by id. Unknown ids are
// skipped.
func (r *ClassRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.FitnessClass, error) {
	out := make(map[string]domain.FitnessClass, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []classModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = *toDomainClass(m)
	}
	return out, nil
}

func (r *ClassRepository) List(ctx context.Context, f ClassFilter) ([]domain.FitnessClass, error) {
	q := r.db.WithContext(ctx).Model(&classModel{})
	if f.StartsAfter != nil {
		q = q.Where("start_time > ?", f.StartsAfter.UTC())
	}

	var rows []classModel
	if err := q.Order("start_time asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.FitnessClass, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainClass(m))
	}
	return out, nil
}

// ReserveSlot takes one seat from the class. The decrement is a single
// conditional UPDATE so the counter can never go below zero, whatever else
// writes to the table.
func (r *ClassRepository) ReserveSlot(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).
		Model(&classModel{}).
		Where("id = ? AND remaining_slots > 0", id).
		UpdateColumn("remaining_slots", gorm.Expr("remaining_slots - 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 1 {
		return nil
	}

	var cnt int64
	if err := r.db.WithContext(ctx).Model(&classModel{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrNoCapacity
}
