package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// Summarize aggregates payments dated inside [start, end] (both inclusive, full timestamps).
// TotalOutstanding is the sum of current balances and does not depend on the window.
func Summarize(school models.School, start, end time.Time) models.FinancialSummary {
	summary := models.FinancialSummary{
		StartDate:        start,
		EndDate:          end,
		TotalRevenue:     decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, student := range school.Students {
		paid := false
		for _, payment := range student.Payments {
			if !inWindow(payment.Date, start, end) {
				continue
			}
			summary.TotalRevenue = summary.TotalRevenue.Add(payment.Amount)
			summary.PaymentsCount++
			paid = true
		}
		if paid {
			summary.StudentsWithNewPayments++
		}
		summary.TotalOutstanding = summary.TotalOutstanding.Add(student.OutstandingFees)
	}
	return summary
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
