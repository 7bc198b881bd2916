package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nereus/internal/domain/prediction"
	"nereus/pkg/errors"
)

// Compile-time check
var _ prediction.Repository = (*PredictionRepository)(nil)

// PredictionRepository implements prediction.Repository using sqlx
type PredictionRepository struct {
	db *sqlx.DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create inserts a new prediction
func (r *PredictionRepository) Create(ctx context.Context, p *prediction.Prediction) error {
	query := `
		INSERT INTO predictions (
			id, pond_id, weight_kg, length_cm, harvest_date,
			confidence, model_version, verified, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.PondID, p.WeightKg, p.LengthCm, p.HarvestDate,
		p.Confidence, p.ModelVersion, p.Verified, p.CreatedAt,
	)

	return err
}

// GetByID retrieves a prediction by ID
func (r *PredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prediction.Prediction, error) {
	var p prediction.Prediction

	query := `SELECT * FROM predictions WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "prediction %s", id)
		}
		return nil, err
	}

	return &p, nil
}

// GetByPond retrieves predictions for a pond, newest first
func (r *PredictionRepository) GetByPond(ctx context.Context, pondID uuid.UUID, limit int) ([]*prediction.Prediction, error) {
	var preds []*prediction.Prediction

	query := `
		SELECT * FROM predictions
		WHERE pond_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &preds, query, pondID, limit)
	if err != nil {
		return nil, err
	}

	return preds, nil
}

// GetLatest retrieves the most recent prediction for a pond
func (r *PredictionRepository) GetLatest(ctx context.Context, pondID uuid.UUID) (*prediction.Prediction, error) {
	var p prediction.Prediction

	query := `
		SELECT * FROM predictions
		WHERE pond_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &p, query, pondID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no predictions for pond %s", pondID)
		}
		return nil, err
	}

	return &p, nil
}

// SetVerified updates the user-feedback flag on a prediction
func (r *PredictionRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	query := `UPDATE predictions SET verified = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "prediction %s", id)
	}

	return nil
}
