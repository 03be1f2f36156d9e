package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

var agingNow = time.Date(2024, 11, 20, 15, 0, 0, 0, time.UTC)

func owingStudent(t *testing.T, outstanding string, dueDaysAgo ...int) models.Student {
	student := models.Student{OutstandingFees: dec(t, outstanding)}
	for _, days := range dueDaysAgo {
		student.Fees = append(student.Fees, models.Fee{
			Amount:     dec(t, "1000"),
			PaidAmount: dec(t, "0"),
			DueDate:    agingNow.AddDate(0, 0, -days),
		})
	}
	return student
}

func TestAgeDebtsFortyDaysOverdue(t *testing.T) {
	school := models.School{Students: []models.Student{owingStudent(t, "15000", 40)}}

	buckets := AgeDebts(school, agingNow)

	require.Len(t, buckets, 4)
	assert.Equal(t, models.AgingRange31To60, buckets[1].Range)
	assertDecimal(t, "15000", buckets[1].Amount)
	assert.Equal(t, 1, buckets[1].Count)
	for _, i := range []int{0, 2, 3} {
		assertDecimal(t, "0", buckets[i].Amount)
		assert.Equal(t, 0, buckets[i].Count)
	}
}

func TestAgeDebtsEmptySchoolKeepsFixedOrder(t *testing.T) {
	buckets := AgeDebts(models.School{}, agingNow)

	require.Len(t, buckets, 4)
	assert.Equal(t, []string{"0-30", "31-60", "61-90", "91+"}, []string{buckets[0].Range, buckets[1].Range, buckets[2].Range, buckets[3].Range})
	for _, bucket := range buckets {
		assert.Equal(t, 0, bucket.Count)
		assert.True(t, bucket.Amount.IsZero())
	}
}

func TestAgeDebtsBandEdges(t *testing.T) {
	cases := []struct {
		days  int
		index int
	}{
		{0, 0}, {30, 0}, {31, 1}, {60, 1}, {61, 2}, {90, 2}, {91, 3}, {400, 3}, {-10, 0},
	}
	for _, tc := range cases {
		school := models.School{Students: []models.Student{owingStudent(t, "100", tc.days)}}
		buckets := AgeDebts(school, agingNow)
		assert.Equal(t, 1, buckets[tc.index].Count, "days=%d", tc.days)
	}
}

func TestAgeDebtsPartialDayIsFloored(t *testing.T) {
	student := models.Student{
		OutstandingFees: dec(t, "100"),
		Fees: []models.Fee{{
			Amount:     dec(t, "100"),
			PaidAmount: dec(t, "0"),
			DueDate:    agingNow.Add(-(30*24*time.Hour + 23*time.Hour)),
		}},
	}

	buckets := AgeDebts(models.School{Students: []models.Student{student}}, agingNow)

	assert.Equal(t, 1, buckets[0].Count)
}

func TestAgeDebtsUsesOldestUnpaidFeeAndWholeBalance(t *testing.T) {
	student := models.Student{
		OutstandingFees: dec(t, "3000"),
		Fees: []models.Fee{
			{Amount: dec(t, "5000"), PaidAmount: dec(t, "5000"), DueDate: agingNow.AddDate(0, 0, -200)},
			{Amount: dec(t, "2000"), PaidAmount: dec(t, "500"), DueDate: agingNow.AddDate(0, 0, -75)},
			{Amount: dec(t, "1500"), PaidAmount: dec(t, "0"), DueDate: agingNow.AddDate(0, 0, -10)},
		},
	}

	buckets := AgeDebts(models.School{Students: []models.Student{student}}, agingNow)

	assert.Equal(t, 1, buckets[2].Count)
	assertDecimal(t, "3000", buckets[2].Amount)
	assert.Equal(t, 0, buckets[3].Count)
}

func TestAgeDebtsInconsistentBalanceFallsBackToNow(t *testing.T) {
	student := models.Student{
		OutstandingFees: dec(t, "800"),
		Fees: []models.Fee{
			{Amount: dec(t, "800"), PaidAmount: dec(t, "800"), DueDate: agingNow.AddDate(0, 0, -120)},
		},
	}

	buckets := AgeDebts(models.School{Students: []models.Student{student}}, agingNow)

	assert.Equal(t, 1, buckets[0].Count)
	assertDecimal(t, "800", buckets[0].Amount)
}

func TestAgeDebtsSkipsSettledStudentsAndTotalsBalance(t *testing.T) {
	school := models.School{Students: []models.Student{
		owingStudent(t, "15000", 40),
		owingStudent(t, "2500", 5, 95),
		owingStudent(t, "1200.25", 61),
		owingStudent(t, "0", 120),
		owingStudent(t, "-50", 120),
		owingStudent(t, "900", 12),
	}}

	buckets := AgeDebts(school, agingNow)

	total := decimal.Zero
	count := 0
	for _, bucket := range buckets {
		total = total.Add(bucket.Amount)
		count += bucket.Count
	}
	assertDecimal(t, "19600.25", total)
	assert.Equal(t, 4, count)
	assertDecimal(t, "2500", buckets[3].Amount)
}

func TestDaysOverdue(t *testing.T) {
	assert.Equal(t, 0, DaysOverdue(agingNow, agingNow))
	assert.Equal(t, 1, DaysOverdue(agingNow.Add(-36*time.Hour), agingNow))
	assert.Equal(t, -2, DaysOverdue(agingNow.Add(36*time.Hour), agingNow))
}
