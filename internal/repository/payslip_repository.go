package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// PayslipRepository persists computed payslips.
type PayslipRepository struct {
	db *sqlx.DB
}

// NewPayslipRepository constructs the repository.
func NewPayslipRepository(db *sqlx.DB) *PayslipRepository {
	return &PayslipRepository{db: db}
}

// Create inserts the payslip unless one already exists for the same member, year and month.
// The boolean reports whether a row was written.
func (r *PayslipRepository) Create(ctx context.Context, slip *models.Payslip) (bool, error) {
	if slip.ID == "" {
		slip.ID = uuid.NewString()
	}
	if slip.GeneratedAt.IsZero() {
		slip.GeneratedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payslips (id, team_member_id, year, month, base_salary, allowances, deductions,
        gross_salary, pension_rate, pension, annual_taxable_income, paye_tax_annual, paye_tax, total_deductions,
        net_salary, generated_at)
        VALUES (:id, :team_member_id, :year, :month, :base_salary, :allowances, :deductions, :gross_salary,
        :pension_rate, :pension, :annual_taxable_income, :paye_tax_annual, :paye_tax, :total_deductions,
        :net_salary, :generated_at)
        ON CONFLICT (team_member_id, year, month) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, slip)
	if err != nil {
		return false, fmt.Errorf("create payslip %s: %w", slip.Key(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create payslip %s: %w", slip.Key(), err)
	}
	return affected > 0, nil
}
