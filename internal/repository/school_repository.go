package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// SchoolRepository loads school rows and their fee catalogue.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs the repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// FindByID returns the school row. Related collections are left empty.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	const query = `SELECT id, name, current_session, current_term, payment_settings, created_at, updated_at
        FROM schools WHERE id = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// ListFeeDefinitions returns the fee definitions of a school in creation order.
func (r *SchoolRepository) ListFeeDefinitions(ctx context.Context, schoolID string) ([]models.FeeDefinition, error) {
	const query = `SELECT id, school_id, name, amounts, created_at FROM fee_definitions
        WHERE school_id = $1 ORDER BY created_at, id`
	var defs []models.FeeDefinition
	if err := r.db.SelectContext(ctx, &defs, query, schoolID); err != nil {
		return nil, fmt.Errorf("list fee definitions: %w", err)
	}
	return defs, nil
}
