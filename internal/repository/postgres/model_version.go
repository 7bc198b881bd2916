package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nereus/internal/domain/modelversion"
	"nereus/pkg/errors"
)

// Compile-time check
var _ modelversion.Repository = (*ModelVersionRepository)(nil)

// ModelVersionRepository implements modelversion.Repository using sqlx
type ModelVersionRepository struct {
	db *sqlx.DB
}

// NewModelVersionRepository creates a new model version repository
func NewModelVersionRepository(db *sqlx.DB) *ModelVersionRepository {
	return &ModelVersionRepository{db: db}
}

// Create inserts a new model version
func (r *ModelVersionRepository) Create(ctx context.Context, m *modelversion.ModelVersion) error {
	query := `
		INSERT INTO model_versions (
			id, version, model_url, model_size_bytes,
			preprocessing_config, is_active, min_app_version, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Version, m.ModelURL, m.ModelSizeBytes,
		m.PreprocessingConfig, m.IsActive, m.MinAppVersion, m.CreatedAt,
	)

	return err
}

// GetByID retrieves a model version by ID
func (r *ModelVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*modelversion.ModelVersion, error) {
	var m modelversion.ModelVersion

	query := `SELECT * FROM model_versions WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "model version %s", id)
		}
		return nil, err
	}

	return &m, nil
}

// GetByVersion retrieves a model by its version string
func (r *ModelVersionRepository) GetByVersion(ctx context.Context, version string) (*modelversion.ModelVersion, error) {
	var m modelversion.ModelVersion

	query := `SELECT * FROM model_versions WHERE version = $1`

	err := r.db.GetContext(ctx, &m, query, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "model version %q", version)
		}
		return nil, err
	}

	return &m, nil
}

// GetLatestActive retrieves the newest active model version
func (r *ModelVersionRepository) GetLatestActive(ctx context.Context) (*modelversion.ModelVersion, error) {
	var m modelversion.ModelVersion

	query := `
		SELECT * FROM model_versions
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &m, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(errors.ErrNotFound, "no active model version")
		}
		return nil, err
	}

	return &m, nil
}

// List retrieves model versions with pagination, newest first
func (r *ModelVersionRepository) List(ctx context.Context, limit, offset int) ([]*modelversion.ModelVersion, error) {
	var versions []*modelversion.ModelVersion

	query := `
		SELECT * FROM model_versions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &versions, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return versions, nil
}

// SetActive toggles the active flag on a model version
func (r *ModelVersionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE model_versions SET is_active = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "model version %s", id)
	}

	return nil
}
