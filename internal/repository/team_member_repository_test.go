package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	teamMemberRowColumns = []string{"id", "school_id", "full_name", "role", "salary_info", "created_at", "updated_at"}
	payslipRowColumns    = []string{"id", "team_member_id", "year", "month", "base_salary", "allowances", "deductions",
		"gross_salary", "pension_rate", "pension", "annual_taxable_income", "paye_tax_annual", "paye_tax",
		"total_deductions", "net_salary", "generated_at"}
)

func payslipRow(rows *sqlmock.Rows, id, memberID string, year, month int) *sqlmock.Rows {
	return rows.AddRow(id, memberID, year, month, "300000", "[]", "[]", "300000", "0.08", "24000", "3312000",
		"231840", "19320", "43320", "256680", time.Now())
}

func TestTeamMemberRepositoryFindByIDAttachesPayslips(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewTeamMemberRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM team_members WHERE school_id = \\$1 AND id = \\$2").
		WithArgs("school-1", "tm-1").
		WillReturnRows(sqlmock.NewRows(teamMemberRowColumns).
			AddRow("tm-1", "school-1", "Tunde", "Teacher", `{"base_salary":"300000","allowances":[],"deductions":[]}`, now, now))
	mock.ExpectQuery("FROM payslips p WHERE p.team_member_id = \\$1").
		WithArgs("tm-1").
		WillReturnRows(payslipRow(sqlmock.NewRows(payslipRowColumns), "slip-1", "tm-1", 2024, 5))

	member, err := repo.FindByID(context.Background(), "school-1", "tm-1")
	require.NoError(t, err)
	require.NotNil(t, member.SalaryInfo)
	assert.Equal(t, "300000", member.SalaryInfo.BaseSalary.String())
	require.Len(t, member.SalaryInfo.Payslips, 1)
	assert.Equal(t, 5, member.SalaryInfo.Payslips[0].Month)
	assert.Equal(t, "256680", member.SalaryInfo.Payslips[0].NetSalary.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamMemberRepositoryFindByIDWithoutSalary(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewTeamMemberRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM team_members").
		WillReturnRows(sqlmock.NewRows(teamMemberRowColumns).AddRow("tm-2", "school-1", "Kemi", "Cleaner", nil, now, now))
	mock.ExpectQuery("FROM payslips").WillReturnRows(sqlmock.NewRows(payslipRowColumns))

	member, err := repo.FindByID(context.Background(), "school-1", "tm-2")
	require.NoError(t, err)
	assert.Nil(t, member.SalaryInfo)
}

func TestTeamMemberRepositoryListBySchoolGroupsPayslips(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewTeamMemberRepository(db)

	now := time.Now()
	salary := `{"base_salary":"100000","allowances":[{"name":"Transport","amount":"5000"}],"deductions":[]}`
	mock.ExpectQuery("FROM team_members WHERE school_id = \\$1").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(teamMemberRowColumns).
			AddRow("tm-1", "school-1", "Ade", "Teacher", salary, now, now).
			AddRow("tm-2", "school-1", "Bisi", "Bursar", salary, now, now))
	rows := sqlmock.NewRows(payslipRowColumns)
	payslipRow(rows, "slip-1", "tm-2", 2024, 4)
	payslipRow(rows, "slip-2", "tm-2", 2024, 5)
	mock.ExpectQuery("FROM payslips p JOIN team_members m").
		WithArgs("school-1").
		WillReturnRows(rows)

	members, err := repo.ListBySchool(context.Background(), "school-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Empty(t, members[0].SalaryInfo.Payslips)
	assert.Len(t, members[1].SalaryInfo.Payslips, 2)
	assert.Equal(t, "5000", members[0].SalaryInfo.Allowances.Total().String())
	require.NoError(t, mock.ExpectationsWereMet())
}
