package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// StudentRepository persists students together with their fees and payments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `s.id, s.school_id, s.applicant_id, s.full_name, s.class_id, s.section, s.parent_name,
        s.parent_phone, s.parent_email, s.total_fees, s.amount_paid, s.outstanding_fees, s.debt_risk,
        s.enrolled_at, s.created_at, s.updated_at`

// ListBySchool returns every student of a school with fees and payments attached.
func (r *StudentRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.school_id = $1 ORDER BY s.class_id, s.full_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, schoolID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return students, nil
	}

	const feeQuery = `SELECT f.id, f.student_id, f.type, f.amount, f.paid_amount, f.due_date, f.session, f.term
        FROM fees f JOIN students s ON s.id = f.student_id
        WHERE s.school_id = $1 ORDER BY f.due_date, f.id`
	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, feeQuery, schoolID); err != nil {
		return nil, fmt.Errorf("list student fees: %w", err)
	}

	const paymentQuery = `SELECT p.id, p.student_id, p.date, p.amount, p.method
        FROM payments p JOIN students s ON s.id = p.student_id
        WHERE s.school_id = $1 ORDER BY p.date, p.id`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, paymentQuery, schoolID); err != nil {
		return nil, fmt.Errorf("list student payments: %w", err)
	}

	index := make(map[string]int, len(students))
	for i := range students {
		students[i].Fees = []models.Fee{}
		students[i].Payments = []models.Payment{}
		index[students[i].ID] = i
	}
	for _, fee := range fees {
		if i, ok := index[fee.StudentID]; ok {
			students[i].Fees = append(students[i].Fees, fee)
		}
	}
	for _, payment := range payments {
		if i, ok := index[payment.StudentID]; ok {
			students[i].Payments = append(students[i].Payments, payment)
		}
	}
	return students, nil
}

// CreateWithFees inserts the student and its fees in a single transaction. Missing ids are generated.
func (r *StudentRepository) CreateWithFees(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = student.CreatedAt
	if student.EnrolledAt.IsZero() {
		student.EnrolledAt = student.CreatedAt
	}
	for i := range student.Fees {
		if student.Fees[i].ID == "" {
			student.Fees[i].ID = uuid.NewString()
		}
		student.Fees[i].StudentID = student.ID
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student tx: %w", err)
	}

	const studentQuery = `INSERT INTO students (id, school_id, applicant_id, full_name, class_id, section, parent_name,
        parent_phone, parent_email, total_fees, amount_paid, outstanding_fees, debt_risk, enrolled_at, created_at, updated_at)
        VALUES (:id, :school_id, :applicant_id, :full_name, :class_id, :section, :parent_name, :parent_phone,
        :parent_email, :total_fees, :amount_paid, :outstanding_fees, :debt_risk, :enrolled_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create student: %w", err)
	}

	const feeQuery = `INSERT INTO fees (id, student_id, type, amount, paid_amount, due_date, session, term)
        VALUES (:id, :student_id, :type, :amount, :paid_amount, :due_date, :session, :term)`
	for i := range student.Fees {
		if _, err := tx.NamedExecContext(ctx, feeQuery, student.Fees[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create student fee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student tx: %w", err)
	}
	return nil
}
