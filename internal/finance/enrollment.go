package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

// Enrollment is the outcome of admitting an applicant: the student to persist and the
// status the applicant record must move to. Persisting both is up to the caller.
type Enrollment struct {
	Student         models.Student
	ApplicantStatus models.ApplicantStatus
}

// DeriveEnrollment builds the starting billing state of a student admitted from applicant.
func DeriveEnrollment(school models.School, applicant models.Applicant, now time.Time) Enrollment {
	fees := DeriveFees(school, applicant.ApplyingForClass, now)

	total := decimal.Zero
	for _, fee := range fees {
		total = total.Add(fee.Amount)
	}

	risk := models.DebtRiskLow
	if total.IsPositive() {
		risk = models.DebtRiskMedium
	}

	var applicantID *string
	if applicant.ID != "" {
		id := applicant.ID
		applicantID = &id
	}

	student := models.Student{
		SchoolID:        school.ID,
		ApplicantID:     applicantID,
		FullName:        applicant.FullName,
		ClassID:         applicant.ApplyingForClass,
		ParentName:      applicant.ParentName,
		ParentPhone:     applicant.ParentPhone,
		ParentEmail:     applicant.ParentEmail,
		TotalFees:       total,
		AmountPaid:      decimal.Zero,
		OutstandingFees: total,
		DebtRisk:        risk,
		Fees:            fees,
		Payments:        []models.Payment{},
		EnrolledAt:      now,
	}
	return Enrollment{Student: student, ApplicantStatus: models.ApplicantStatusEnrolled}
}

// DeriveFees returns one fee per definition that prices class with a mandatory entry.
// Due dates are one calendar month after now, rolling over short months instead of clamping.
func DeriveFees(school models.School, class string, now time.Time) []models.Fee {
	dueDate := now.AddDate(0, 1, 0)
	fees := make([]models.Fee, 0, len(school.FeeDefinitions))
	for _, def := range school.FeeDefinitions {
		entry, ok := mandatoryAmount(def, class)
		if !ok {
			continue
		}
		fees = append(fees, models.Fee{
			Type:       def.Name,
			Amount:     entry.Amount,
			PaidAmount: decimal.Zero,
			DueDate:    dueDate,
			Session:    school.CurrentSession,
			Term:       school.CurrentTerm,
		})
	}
	return fees
}

func mandatoryAmount(def models.FeeDefinition, class string) (models.FeeAmount, bool) {
	for _, entry := range def.Amounts {
		if entry.Class == class && entry.Type.IsMandatory() {
			return entry, true
		}
	}
	return models.FeeAmount{}, false
}
