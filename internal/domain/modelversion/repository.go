package modelversion

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for model version persistence (PostgreSQL)
type Repository interface {
	Create(ctx context.Context, m *ModelVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*ModelVersion, error)
	GetByVersion(ctx context.Context, version string) (*ModelVersion, error)
	// GetLatestActive returns the newest active model, or ErrNotFound
	GetLatestActive(ctx context.Context) (*ModelVersion, error)
	List(ctx context.Context, limit, offset int) ([]*ModelVersion, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
