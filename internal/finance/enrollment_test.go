package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

func enrollmentSchool(t *testing.T) models.School {
	return models.School{
		ID:             "school-1",
		CurrentSession: "2024/2025",
		CurrentTerm:    "First",
		FeeDefinitions: []models.FeeDefinition{
			{Name: "Tuition", Amounts: models.FeeAmounts{
				{Class: "JSS1", Amount: dec(t, "50000"), Type: models.FeeTypeMandatory},
				{Class: "JSS2", Amount: dec(t, "55000"), Type: models.FeeTypeMandatory},
			}},
			{Name: "Uniform", Amounts: models.FeeAmounts{
				{Class: "JSS1", Amount: dec(t, "7500")},
			}},
			{Name: "Excursion", Amounts: models.FeeAmounts{
				{Class: "JSS1", Amount: dec(t, "12000"), Type: models.FeeTypeOptional},
			}},
			{Name: "Lab", Amounts: models.FeeAmounts{
				{Class: "SS1", Amount: dec(t, "9000"), Type: models.FeeTypeMandatory},
			}},
		},
	}
}

func TestDeriveEnrollmentSingleTuition(t *testing.T) {
	school := models.School{
		ID:             "school-1",
		CurrentSession: "2024/2025",
		CurrentTerm:    "First",
		FeeDefinitions: []models.FeeDefinition{
			{Name: "Tuition", Amounts: models.FeeAmounts{{Class: "JSS1", Amount: dec(t, "50000"), Type: models.FeeTypeMandatory}}},
		},
	}
	now := time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC)

	result := DeriveEnrollment(school, models.Applicant{ID: "app-1", FullName: "Ada", ApplyingForClass: "JSS1"}, now)

	student := result.Student
	require.Len(t, student.Fees, 1)
	fee := student.Fees[0]
	assert.Equal(t, "Tuition", fee.Type)
	assertDecimal(t, "50000", fee.Amount)
	assertDecimal(t, "0", fee.PaidAmount)
	assert.Equal(t, time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC), fee.DueDate)
	assert.Equal(t, "2024/2025", fee.Session)
	assert.Equal(t, "First", fee.Term)
	assertDecimal(t, "50000", student.TotalFees)
	assertDecimal(t, "0", student.AmountPaid)
	assertDecimal(t, "50000", student.OutstandingFees)
	assert.Equal(t, models.DebtRiskMedium, student.DebtRisk)
	assert.Equal(t, models.ApplicantStatusEnrolled, result.ApplicantStatus)
	require.NotNil(t, student.ApplicantID)
	assert.Equal(t, "app-1", *student.ApplicantID)
	assert.Equal(t, "JSS1", student.ClassID)
	assert.Equal(t, "school-1", student.SchoolID)
}

func TestDeriveEnrollmentPicksMandatoryAndUntypedEntries(t *testing.T) {
	now := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)

	result := DeriveEnrollment(enrollmentSchool(t), models.Applicant{ApplyingForClass: "JSS1"}, now)

	student := result.Student
	require.Len(t, student.Fees, 2)
	assert.Equal(t, "Tuition", student.Fees[0].Type)
	assert.Equal(t, "Uniform", student.Fees[1].Type)
	assertDecimal(t, "57500", student.TotalFees)
	assert.Nil(t, student.ApplicantID)

	sum := student.Fees[0].Amount.Add(student.Fees[1].Amount)
	assert.True(t, sum.Equal(student.TotalFees))
	assert.True(t, student.TotalFees.Equal(student.OutstandingFees))
	assert.True(t, student.TotalFees.Equal(student.AmountPaid.Add(student.OutstandingFees)))
}

func TestDeriveEnrollmentWithoutMatchingClassIsLowRisk(t *testing.T) {
	result := DeriveEnrollment(enrollmentSchool(t), models.Applicant{ApplyingForClass: "Nursery"}, time.Now())

	assert.Empty(t, result.Student.Fees)
	assertDecimal(t, "0", result.Student.TotalFees)
	assertDecimal(t, "0", result.Student.OutstandingFees)
	assert.Equal(t, models.DebtRiskLow, result.Student.DebtRisk)
}

func TestDeriveEnrollmentZeroAmountIsLowRisk(t *testing.T) {
	school := models.School{FeeDefinitions: []models.FeeDefinition{
		{Name: "Waived", Amounts: models.FeeAmounts{{Class: "JSS1", Amount: dec(t, "0")}}},
	}}

	result := DeriveEnrollment(school, models.Applicant{ApplyingForClass: "JSS1"}, time.Now())

	require.Len(t, result.Student.Fees, 1)
	assert.Equal(t, models.DebtRiskLow, result.Student.DebtRisk)
}

func TestDeriveFeesDueDateRollsOverMonthEnd(t *testing.T) {
	school := enrollmentSchool(t)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"january 31 in leap year", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)},
		{"january 31", time.Date(2023, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2023, 3, 3, 8, 0, 0, 0, time.UTC)},
		{"december", time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"august 31", time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fees := DeriveFees(school, "JSS1", tc.now)
			require.NotEmpty(t, fees)
			for _, fee := range fees {
				assert.Equal(t, tc.want, fee.DueDate)
			}
		})
	}
}

func TestDeriveFeesUsesFirstMandatoryEntryPerDefinition(t *testing.T) {
	school := models.School{FeeDefinitions: []models.FeeDefinition{
		{Name: "Tuition", Amounts: models.FeeAmounts{
			{Class: "JSS1", Amount: dec(t, "1000"), Type: models.FeeTypeOptional},
			{Class: "JSS1", Amount: dec(t, "2000"), Type: models.FeeTypeMandatory},
		}},
	}}

	fees := DeriveFees(school, "JSS1", time.Now())

	require.Len(t, fees, 1)
	assertDecimal(t, "2000", fees[0].Amount)
}
