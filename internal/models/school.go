package models

import (
	"database/sql/driver"
	"time"
)

// School is the aggregate root every finance computation reads from.
type School struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	CurrentSession  string           `db:"current_session" json:"current_session"`
	CurrentTerm     string           `db:"current_term" json:"current_term"`
	PaymentSettings PaymentSettings  `db:"payment_settings" json:"payment_settings"`
	FeeDefinitions  []FeeDefinition  `db:"-" json:"fee_definitions,omitempty"`
	Students        []Student        `db:"-" json:"students,omitempty"`
	Applicants      []Applicant      `db:"-" json:"applicants,omitempty"`
	PayrollSettings *PayrollSettings `db:"-" json:"payroll_settings,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// PaymentSettings carries the bank details printed on invoices.
type PaymentSettings struct {
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// Value marshals payment settings to JSON for persistence.
func (p PaymentSettings) Value() (driver.Value, error) {
	return marshalJSONB(p, "payment settings")
}

// Scan unmarshals JSON payloads into payment settings.
func (p *PaymentSettings) Scan(value interface{}) error {
	*p = PaymentSettings{}
	return unmarshalJSONB(value, p, "payment settings")
}

// ApplicantStatus is the admissions workflow state of an applicant.
type ApplicantStatus string

const (
	ApplicantStatusPending  ApplicantStatus = "pending"
	ApplicantStatusAccepted ApplicantStatus = "accepted"
	ApplicantStatusRejected ApplicantStatus = "rejected"
	ApplicantStatusEnrolled ApplicantStatus = "enrolled"
)

// Applicant is a pre-enrollment record.
type Applicant struct {
	ID               string          `db:"id" json:"id"`
	SchoolID         string          `db:"school_id" json:"school_id"`
	FullName         string          `db:"full_name" json:"full_name"`
	ApplyingForClass string          `db:"applying_for_class" json:"applying_for_class"`
	ParentName       string          `db:"parent_name" json:"parent_name"`
	ParentPhone      string          `db:"parent_phone" json:"parent_phone"`
	ParentEmail      string          `db:"parent_email" json:"parent_email"`
	Status           ApplicantStatus `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
