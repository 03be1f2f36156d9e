package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// ClassPerformance groups students by class and totals the fees billed for session/term
// alongside their current outstanding balances. Classes are returned sorted by id.
func ClassPerformance(school models.School, session, term string) []models.ClassPerformance {
	byClass := make(map[string]*models.ClassPerformance)
	for _, student := range school.Students {
		perf, ok := byClass[student.ClassID]
		if !ok {
			perf = &models.ClassPerformance{
				ClassID:          student.ClassID,
				TotalFeesForTerm: decimal.Zero,
				TotalOutstanding: decimal.Zero,
			}
			byClass[student.ClassID] = perf
		}
		for _, fee := range student.Fees {
			if fee.Session == session && fee.Term == term {
				perf.TotalFeesForTerm = perf.TotalFeesForTerm.Add(fee.Amount)
			}
		}
		perf.TotalOutstanding = perf.TotalOutstanding.Add(student.OutstandingFees)
		perf.StudentCount++
	}

	result := make([]models.ClassPerformance, 0, len(byClass))
	for _, perf := range byClass {
		result = append(result, *perf)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ClassID < result[j].ClassID
	})
	return result
}
