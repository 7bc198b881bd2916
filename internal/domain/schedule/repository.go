package schedule

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for feeding schedule persistence (PostgreSQL)
type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	GetByPond(ctx context.Context, pondID uuid.UUID) ([]*Schedule, error)
	GetEnabled(ctx context.Context) ([]*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
}
