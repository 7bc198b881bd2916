package pond

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for pond persistence (PostgreSQL)
type Repository interface {
	Create(ctx context.Context, p *Pond) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pond, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Pond, error)
	GetActive(ctx context.Context) ([]*Pond, error)
	Update(ctx context.Context, p *Pond) error
	Delete(ctx context.Context, id uuid.UUID) error
}
