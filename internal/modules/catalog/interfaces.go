package catalog

import (
	"context"

	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/repository"
)

// ClassRepository defines the storage operations the catalog needs
type ClassRepository interface {
	Create(ctx context.Context, c *domain.FitnessClass) error
	GetByID(ctx context.Context, id string) (*domain.FitnessClass, error)
	List(ctx context.Context, f repository.ClassFilter) ([]domain.FitnessClass, error)
}
