package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// FeeType tags a fee definition amount entry.
type FeeType string

const (
	FeeTypeMandatory FeeType = "mandatory"
	FeeTypeOptional  FeeType = "optional"
)

// IsMandatory reports whether the entry is applied automatically. Untyped entries count as mandatory.
func (t FeeType) IsMandatory() bool {
	return t == "" || t == FeeTypeMandatory
}

// FeeAmount is the per-class price of a fee definition.
type FeeAmount struct {
	Class  string          `json:"class"`
	Amount decimal.Decimal `json:"amount"`
	Type   FeeType         `json:"type,omitempty"`
}

// FeeAmounts is persisted as a JSONB array.
type FeeAmounts []FeeAmount

// Value marshals the amount entries to JSON for persistence.
func (a FeeAmounts) Value() (driver.Value, error) {
	if a == nil {
		a = FeeAmounts{}
	}
	return marshalJSONB(a, "fee amounts")
}

// Scan unmarshals JSON payloads into amount entries.
func (a *FeeAmounts) Scan(value interface{}) error {
	*a = nil
	return unmarshalJSONB(value, a, "fee amounts")
}

// FeeDefinition is a named charge template such as "Tuition".
type FeeDefinition struct {
	ID        string     `db:"id" json:"id"`
	SchoolID  string     `db:"school_id" json:"school_id"`
	Name      string     `db:"name" json:"name"`
	Amounts   FeeAmounts `db:"amounts" json:"amounts"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Fee is a charge owned by a student.
type Fee struct {
	ID         string          `db:"id" json:"id"`
	StudentID  string          `db:"student_id" json:"student_id"`
	Type       string          `db:"type" json:"type"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	PaidAmount decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	DueDate    time.Time       `db:"due_date" json:"due_date"`
	Session    string          `db:"session" json:"session"`
	Term       string          `db:"term" json:"term"`
}

// Outstanding returns the unpaid part of the fee.
func (f Fee) Outstanding() decimal.Decimal {
	return f.Amount.Sub(f.PaidAmount)
}

// Settled reports whether nothing remains to be paid.
func (f Fee) Settled() bool {
	return !f.PaidAmount.LessThan(f.Amount)
}

// Payment is an immutable record of money received from a student.
type Payment struct {
	ID        string          `db:"id" json:"id"`
	StudentID string          `db:"student_id" json:"student_id"`
	Date      time.Time       `db:"date" json:"date"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Method    string          `db:"method" json:"method"`
}

// DebtRisk is the coarse collection risk assigned at enrollment.
type DebtRisk string

const (
	DebtRiskLow    DebtRisk = "Low"
	DebtRiskMedium DebtRisk = "Medium"
)

// Student is an enrolled learner with billing state.
//
// TotalFees = AmountPaid + OutstandingFees holds after enrollment; keeping it true after later
// payments or fee edits is the job of whoever records them.
type Student struct {
	ID              string          `db:"id" json:"id"`
	SchoolID        string          `db:"school_id" json:"school_id"`
	ApplicantID     *string         `db:"applicant_id" json:"applicant_id,omitempty"`
	FullName        string          `db:"full_name" json:"full_name"`
	ClassID         string          `db:"class_id" json:"class_id"`
	Section         string          `db:"section" json:"section"`
	ParentName      string          `db:"parent_name" json:"parent_name"`
	ParentPhone     string          `db:"parent_phone" json:"parent_phone"`
	ParentEmail     string          `db:"parent_email" json:"parent_email"`
	TotalFees       decimal.Decimal `db:"total_fees" json:"total_fees"`
	AmountPaid      decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	OutstandingFees decimal.Decimal `db:"outstanding_fees" json:"outstanding_fees"`
	DebtRisk        DebtRisk        `db:"debt_risk" json:"debt_risk"`
	Fees            []Fee           `db:"-" json:"fees"`
	Payments        []Payment       `db:"-" json:"payments"`
	EnrolledAt      time.Time       `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
