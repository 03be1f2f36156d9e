package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialSummary aggregates payments inside a reporting window.
// TotalOutstanding is a point-in-time figure and ignores the window.
type FinancialSummary struct {
	StartDate               time.Time       `json:"start_date"`
	EndDate                 time.Time       `json:"end_date"`
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	PaymentsCount           int             `json:"payments_count"`
	StudentsWithNewPayments int             `json:"students_with_new_payments"`
	TotalOutstanding        decimal.Decimal `json:"total_outstanding"`
}

// Aging bucket labels in report order.
const (
	AgingRange0To30  = "0-30"
	AgingRange31To60 = "31-60"
	AgingRange61To90 = "61-90"
	AgingRangeOver90 = "91+"
)

// AgingBucket groups students whose oldest unpaid fee falls inside Range days overdue.
type AgingBucket struct {
	Range  string          `json:"range"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// ClassPerformance is the collection picture of one class for a session and term.
type ClassPerformance struct {
	ClassID          string          `json:"class_id"`
	TotalFeesForTerm decimal.Decimal `json:"total_fees_for_term"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	StudentCount     int             `json:"student_count"`
}
