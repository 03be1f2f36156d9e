package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// PayrollSettingsRepository stores the pension and PAYE configuration of each school.
type PayrollSettingsRepository struct {
	db *sqlx.DB
}

// NewPayrollSettingsRepository constructs the repository.
func NewPayrollSettingsRepository(db *sqlx.DB) *PayrollSettingsRepository {
	return &PayrollSettingsRepository{db: db}
}

// FindBySchool returns the school's settings or sql.ErrNoRows when none were saved.
func (r *PayrollSettingsRepository) FindBySchool(ctx context.Context, schoolID string) (*models.PayrollSettings, error) {
	const query = `SELECT school_id, employee_pension_rate, paye_brackets, updated_at FROM payroll_settings WHERE school_id = $1`
	var settings models.PayrollSettings
	if err := r.db.GetContext(ctx, &settings, query, schoolID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert creates or replaces the school's settings.
func (r *PayrollSettingsRepository) Upsert(ctx context.Context, settings *models.PayrollSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO payroll_settings (school_id, employee_pension_rate, paye_brackets, updated_at)
        VALUES (:school_id, :employee_pension_rate, :paye_brackets, :updated_at)
        ON CONFLICT (school_id)
        DO UPDATE SET employee_pension_rate = EXCLUDED.employee_pension_rate, paye_brackets = EXCLUDED.paye_brackets,
                      updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert payroll settings: %w", err)
	}
	return nil
}
