package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

func TestPayslipRepositoryCreateInserted(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewPayslipRepository(db)

	slip := &models.Payslip{TeamMemberID: "tm-1", Year: 2024, Month: 5, NetSalary: decimal.NewFromInt(256680)}
	mock.ExpectExec("INSERT INTO payslips .* ON CONFLICT \\(team_member_id, year, month\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Create(context.Background(), slip)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, slip.ID)
	assert.False(t, slip.GeneratedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayslipRepositoryCreateConflict(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewPayslipRepository(db)

	mock.ExpectExec("INSERT INTO payslips").WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Create(context.Background(), &models.Payslip{TeamMemberID: "tm-1", Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestPayslipRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newFinanceRepoMock(t)
	defer cleanup()
	repo := NewPayslipRepository(db)

	mock.ExpectExec("INSERT INTO payslips").WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(context.Background(), &models.Payslip{TeamMemberID: "tm-1", Year: 2024, Month: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tm-1:2024-05")
}
