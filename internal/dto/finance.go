package dto

import (
	"time"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// FinanceSummaryQuery carries the reporting window. Bounds accept RFC3339 or YYYY-MM-DD;
// a date-only end covers the whole day.
type FinanceSummaryQuery struct {
	Start string `form:"start" json:"start" validate:"required"`
	End   string `form:"end" json:"end" validate:"required"`
}

// ClassPerformanceQuery selects the session and term. Empty values fall back to the school's current ones.
type ClassPerformanceQuery struct {
	Session string `form:"session" json:"session,omitempty"`
	Term    string `form:"term" json:"term,omitempty"`
}

// AgingReport wraps the debt aging buckets with the date they were computed for.
type AgingReport struct {
	SchoolID string               `json:"school_id"`
	AsOf     time.Time            `json:"as_of"`
	Buckets  []models.AgingBucket `json:"buckets"`
}

// ClassPerformanceReport lists per-class figures for one session and term.
type ClassPerformanceReport struct {
	SchoolID string                    `json:"school_id"`
	Session  string                    `json:"session"`
	Term     string                    `json:"term"`
	Classes  []models.ClassPerformance `json:"classes"`
}

// EnrollmentResult is returned after an applicant becomes a student.
type EnrollmentResult struct {
	Student         models.Student         `json:"student"`
	ApplicantID     string                 `json:"applicant_id"`
	ApplicantStatus models.ApplicantStatus `json:"applicant_status"`
}

// Export report kinds and formats.
const (
	ExportReportSummary          = "summary"
	ExportReportAging            = "aging"
	ExportReportClassPerformance = "class-performance"

	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest asks for a finance report rendered to a downloadable file.
type ExportRequest struct {
	Report  string `json:"report" validate:"required,oneof=summary aging class-performance"`
	Format  string `json:"format" validate:"required,oneof=csv pdf"`
	Start   string `json:"start,omitempty" validate:"required_if=Report summary"`
	End     string `json:"end,omitempty" validate:"required_if=Report summary"`
	Session string `json:"session,omitempty"`
	Term    string `json:"term,omitempty"`
}

// ExportResponse points at the stored export.
type ExportResponse struct {
	ID        string    `json:"id"`
	Report    string    `json:"report"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PayslipRequest selects the pay period.
type PayslipRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=9999"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// Reasons a payslip was not generated.
const (
	PayslipSkipAlreadyExists = "already_exists"
	PayslipSkipNoSalary      = "no_salary"
)

// PayslipResult reports whether a payslip was created and why not otherwise.
type PayslipResult struct {
	TeamMemberID string          `json:"team_member_id"`
	Created      bool            `json:"created"`
	Reason       string          `json:"reason,omitempty"`
	Payslip      *models.Payslip `json:"payslip,omitempty"`
}

// PayrollRunResult summarises a whole-school pay run.
type PayrollRunResult struct {
	SchoolID string           `json:"school_id"`
	Year     int              `json:"year"`
	Month    int              `json:"month"`
	Created  []models.Payslip `json:"created"`
	Skipped  []PayslipResult  `json:"skipped"`
}

// PayrollRunAccepted acknowledges a queued pay run.
type PayrollRunAccepted struct {
	JobID    string `json:"job_id"`
	SchoolID string `json:"school_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

// PayeBracketInput is one bracket of a settings update.
type PayeBracketInput struct {
	UpTo string `json:"up_to" validate:"required,numeric"`
	Rate string `json:"rate" validate:"required,numeric"`
}

// PayrollSettingsRequest replaces a school's pension rate and PAYE brackets.
type PayrollSettingsRequest struct {
	EmployeePensionRate string             `json:"employee_pension_rate" validate:"required,numeric"`
	PayeBrackets        []PayeBracketInput `json:"paye_brackets" validate:"dive"`
}
