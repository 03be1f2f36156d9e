package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// ApplicantRepository persists admission applicants.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs the repository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// FindByID returns an applicant of the given school.
func (r *ApplicantRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Applicant, error) {
	const query = `SELECT id, school_id, full_name, applying_for_class, parent_name, parent_phone, parent_email,
        status, created_at, updated_at FROM applicants WHERE school_id = $1 AND id = $2`
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, schoolID, id); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// UpdateStatus moves the applicant to status. It returns sql.ErrNoRows when no row matched.
func (r *ApplicantRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicantStatus, at time.Time) error {
	const query = `UPDATE applicants SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("update applicant status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update applicant status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
