package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// TeamMemberRepository loads staff records with their payslip history.
type TeamMemberRepository struct {
	db *sqlx.DB
}

// NewTeamMemberRepository constructs the repository.
func NewTeamMemberRepository(db *sqlx.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

const teamMemberColumns = `id, school_id, full_name, role, salary_info, created_at, updated_at`

const payslipColumns = `p.id, p.team_member_id, p.year, p.month, p.base_salary, p.allowances, p.deductions,
        p.gross_salary, p.pension_rate, p.pension, p.annual_taxable_income, p.paye_tax_annual, p.paye_tax,
        p.total_deductions, p.net_salary, p.generated_at`

// FindByID returns a team member of the school with payslips attached to the salary info.
func (r *TeamMemberRepository) FindByID(ctx context.Context, schoolID, id string) (*models.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE school_id = $1 AND id = $2`
	var member models.TeamMember
	if err := r.db.GetContext(ctx, &member, query, schoolID, id); err != nil {
		return nil, err
	}

	slipQuery := `SELECT ` + payslipColumns + ` FROM payslips p WHERE p.team_member_id = $1 ORDER BY p.year, p.month`
	var slips []models.Payslip
	if err := r.db.SelectContext(ctx, &slips, slipQuery, id); err != nil {
		return nil, fmt.Errorf("list member payslips: %w", err)
	}
	attachPayslips(&member, slips)
	return &member, nil
}

// ListBySchool returns every team member of the school with payslips attached.
func (r *TeamMemberRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE school_id = $1 ORDER BY full_name, id`
	var members []models.TeamMember
	if err := r.db.SelectContext(ctx, &members, query, schoolID); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	if len(members) == 0 {
		return members, nil
	}

	slipQuery := `SELECT ` + payslipColumns + ` FROM payslips p JOIN team_members m ON m.id = p.team_member_id
        WHERE m.school_id = $1 ORDER BY p.year, p.month`
	var slips []models.Payslip
	if err := r.db.SelectContext(ctx, &slips, slipQuery, schoolID); err != nil {
		return nil, fmt.Errorf("list school payslips: %w", err)
	}

	byMember := make(map[string][]models.Payslip)
	for _, slip := range slips {
		byMember[slip.TeamMemberID] = append(byMember[slip.TeamMemberID], slip)
	}
	for i := range members {
		attachPayslips(&members[i], byMember[members[i].ID])
	}
	return members, nil
}

func attachPayslips(member *models.TeamMember, slips []models.Payslip) {
	if member.SalaryInfo == nil {
		return
	}
	member.SalaryInfo.Payslips = slips
}
