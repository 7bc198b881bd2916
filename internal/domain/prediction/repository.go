package prediction

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for prediction persistence (PostgreSQL)
type Repository interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error)
	GetByPond(ctx context.Context, pondID uuid.UUID, limit int) ([]*Prediction, error)
	GetLatest(ctx context.Context, pondID uuid.UUID) (*Prediction, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}
