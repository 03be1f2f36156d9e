package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

var agingRanges = []struct {
	label   string
	maxDays int
}{
	{label: models.AgingRange0To30, maxDays: 30},
	{label: models.AgingRange31To60, maxDays: 60},
	{label: models.AgingRange61To90, maxDays: 90},
}

// AgeDebts buckets every student owing money by the age of their oldest unpaid fee.
// The student is classified by that single fee but contributes the whole outstanding balance.
// The four buckets are always returned, in order, even when empty.
func AgeDebts(school models.School, now time.Time) []models.AgingBucket {
	buckets := []models.AgingBucket{
		{Range: models.AgingRange0To30, Amount: decimal.Zero},
		{Range: models.AgingRange31To60, Amount: decimal.Zero},
		{Range: models.AgingRange61To90, Amount: decimal.Zero},
		{Range: models.AgingRangeOver90, Amount: decimal.Zero},
	}
	for _, student := range school.Students {
		if !student.OutstandingFees.IsPositive() {
			continue
		}
		oldest := OldestUnpaidDueDate(student, now)
		idx := agingBucketIndex(DaysOverdue(oldest, now))
		buckets[idx].Amount = buckets[idx].Amount.Add(student.OutstandingFees)
		buckets[idx].Count++
	}
	return buckets
}

// OldestUnpaidDueDate returns the earliest due date among fees not fully paid.
// A student with a balance but no unpaid fee is inconsistent data; fallback is used then.
func OldestUnpaidDueDate(student models.Student, fallback time.Time) time.Time {
	var (
		oldest time.Time
		found  bool
	)
	for _, fee := range student.Fees {
		if !fee.PaidAmount.LessThan(fee.Amount) {
			continue
		}
		if !found || fee.DueDate.Before(oldest) {
			oldest = fee.DueDate
			found = true
		}
	}
	if !found {
		return fallback
	}
	return oldest
}

// DaysOverdue returns the floor of the days elapsed from due to now.
// Due dates in the future give a negative result.
func DaysOverdue(due, now time.Time) int {
	const day = 24 * time.Hour
	elapsed := now.Sub(due)
	days := int(elapsed / day)
	if elapsed%day < 0 {
		days--
	}
	return days
}

func agingBucketIndex(days int) int {
	for i, r := range agingRanges {
		if days <= r.maxDays {
			return i
		}
	}
	return len(agingRanges)
}
