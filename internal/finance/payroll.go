package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

var monthsPerYear = decimal.NewFromInt(12)

// HasSalary reports whether the member is configured for payroll.
func HasSalary(member models.TeamMember) bool {
	return member.SalaryInfo != nil && member.SalaryInfo.BaseSalary.IsPositive()
}

// HasPayslip reports whether the member already has a payslip for year/month.
func HasPayslip(member models.TeamMember, year, month int) bool {
	if member.SalaryInfo == nil {
		return false
	}
	for _, slip := range member.SalaryInfo.Payslips {
		if slip.Year == year && slip.Month == month {
			return true
		}
	}
	return false
}

// CalculatePayslip computes the payslip of member for year/month. It returns nil when the
// member has no usable salary or is already paid for that month, so repeated runs are no-ops.
// The member is not modified; appending the result to its history is the caller's job.
func CalculatePayslip(member models.TeamMember, year, month int, settings models.PayrollSettings, now time.Time) *models.Payslip {
	if !HasSalary(member) || HasPayslip(member, year, month) {
		return nil
	}
	info := member.SalaryInfo

	gross := info.BaseSalary.Add(info.Allowances.Total())
	pension := info.BaseSalary.Mul(settings.EmployeePensionRate)

	// Brackets are annual, so the monthly figure is annualised before the walk and the tax
	// brought back to a month afterwards.
	annualTaxable := gross.Sub(pension).Mul(monthsPerYear)
	annualTax := ProgressiveTax(annualTaxable, settings.PayeBrackets)
	paye := annualTax.Div(monthsPerYear)

	totalDeductions := paye.Add(pension).Add(info.Deductions.Total())

	return &models.Payslip{
		TeamMemberID:        member.ID,
		Year:                year,
		Month:               month,
		BaseSalary:          info.BaseSalary,
		Allowances:          append(models.SalaryItems{}, info.Allowances...),
		Deductions:          append(models.SalaryItems{}, info.Deductions...),
		GrossSalary:         gross,
		PensionRate:         settings.EmployeePensionRate,
		Pension:             pension,
		AnnualTaxableIncome: annualTaxable,
		PayeTaxAnnual:       annualTax,
		PayeTax:             paye,
		TotalDeductions:     totalDeductions,
		NetSalary:           gross.Sub(totalDeductions),
		GeneratedAt:         now,
	}
}

// ProgressiveTax walks brackets in ascending UpTo order, taxing each slice of income at its
// bracket's rate. Income above the highest bracket is not taxed.
func ProgressiveTax(income decimal.Decimal, brackets []models.PayeBracket) decimal.Decimal {
	ordered := append([]models.PayeBracket(nil), brackets...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpTo.LessThan(ordered[j].UpTo)
	})

	tax := decimal.Zero
	remaining := income
	lastLimit := decimal.Zero
	for _, bracket := range ordered {
		if !remaining.IsPositive() {
			break
		}
		slice := decimal.Min(remaining, bracket.UpTo.Sub(lastLimit))
		if slice.IsPositive() {
			tax = tax.Add(slice.Mul(bracket.Rate))
			remaining = remaining.Sub(slice)
		}
		lastLimit = bracket.UpTo
	}
	return tax
}
