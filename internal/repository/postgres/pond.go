package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nereus/internal/domain/pond"
	"nereus/pkg/errors"
)

// Compile-time check
var _ pond.Repository = (*PondRepository)(nil)

// PondRepository implements pond.Repository using sqlx
type PondRepository struct {
	db *sqlx.DB
}

// NewPondRepository creates a new pond repository
func NewPondRepository(db *sqlx.DB) *PondRepository {
	return &PondRepository{db: db}
}

// Create inserts a new pond
func (r *PondRepository) Create(ctx context.Context, p *pond.Pond) error {
	query := `
		INSERT INTO ponds (
			id, user_id, name, species, stock_count,
			start_date, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Species, p.StockCount,
		p.StartDate, p.Active, p.CreatedAt, p.UpdatedAt,
	)

	return err
}

// GetByID retrieves a pond by ID
func (r *PondRepository) GetByID(ctx context.Context, id uuid.UUID) (*pond.Pond, error) {
	var p pond.Pond

	query := `SELECT * FROM ponds WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "pond %s", id)
		}
		return nil, err
	}

	return &p, nil
}

// GetByUser retrieves all ponds for a user
func (r *PondRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*pond.Pond, error) {
	var ponds []*pond.Pond

	query := `SELECT * FROM ponds WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &ponds, query, userID)
	if err != nil {
		return nil, err
	}

	return ponds, nil
}

// GetActive retrieves all active ponds across all users
func (r *PondRepository) GetActive(ctx context.Context) ([]*pond.Pond, error) {
	var ponds []*pond.Pond

	query := `SELECT * FROM ponds WHERE active = true ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &ponds, query)
	if err != nil {
		return nil, err
	}

	return ponds, nil
}

// Update updates a pond
func (r *PondRepository) Update(ctx context.Context, p *pond.Pond) error {
	query := `
		UPDATE ponds SET
			name = $2,
			species = $3,
			stock_count = $4,
			start_date = $5,
			active = $6,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Species, p.StockCount, p.StartDate, p.Active,
	)

	return err
}

// Delete deletes a pond
func (r *PondRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ponds WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
