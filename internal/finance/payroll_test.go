package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-api/internal/models"
)

var payrollNow = time.Date(2024, 11, 28, 10, 0, 0, 0, time.UTC)

func singleBracketSettings(t *testing.T) models.PayrollSettings {
	return models.PayrollSettings{
		EmployeePensionRate: dec(t, "0.08"),
		PayeBrackets:        models.PayeBrackets{{UpTo: dec(t, "10000000"), Rate: dec(t, "0.07")}},
	}
}

func TestCalculatePayslipSingleBracket(t *testing.T) {
	member := models.TeamMember{ID: "tm-1", SalaryInfo: &models.SalaryInfo{BaseSalary: dec(t, "300000")}}

	slip := CalculatePayslip(member, 2024, 11, singleBracketSettings(t), payrollNow)

	require.NotNil(t, slip)
	assert.Equal(t, "tm-1", slip.TeamMemberID)
	assert.Equal(t, 2024, slip.Year)
	assert.Equal(t, 11, slip.Month)
	assertDecimal(t, "300000", slip.GrossSalary)
	assertDecimal(t, "24000", slip.Pension)
	assertDecimal(t, "3312000", slip.AnnualTaxableIncome)
	assertDecimal(t, "231840", slip.PayeTaxAnnual)
	assertDecimal(t, "19320", slip.PayeTax)
	assertDecimal(t, "43320", slip.TotalDeductions)
	assertDecimal(t, "256680", slip.NetSalary)
	assertDecimal(t, "0.08", slip.PensionRate)
	assert.Equal(t, payrollNow, slip.GeneratedAt)
}

func TestCalculatePayslipAllowancesAndDeductions(t *testing.T) {
	member := models.TeamMember{ID: "tm-2", SalaryInfo: &models.SalaryInfo{
		BaseSalary: dec(t, "200000"),
		Allowances: models.SalaryItems{{Name: "Housing", Amount: dec(t, "50000")}, {Name: "Transport", Amount: dec(t, "10000")}},
		Deductions: models.SalaryItems{{Name: "Loan", Amount: dec(t, "15000")}},
	}}
	settings := models.PayrollSettings{
		EmployeePensionRate: dec(t, "0.1"),
		PayeBrackets: models.PayeBrackets{
			{UpTo: dec(t, "1200000"), Rate: dec(t, "0")},
			{UpTo: dec(t, "2400000"), Rate: dec(t, "0.1")},
			{UpTo: dec(t, "10000000"), Rate: dec(t, "0.2")},
		},
	}

	slip := CalculatePayslip(member, 2024, 3, settings, payrollNow)

	require.NotNil(t, slip)
	// gross 260000, pension on base only 20000, annual (260000-20000)*12 = 2880000
	// tax = 1200000*0 + 1200000*0.1 + 480000*0.2 = 216000 -> 18000 a month
	assertDecimal(t, "260000", slip.GrossSalary)
	assertDecimal(t, "20000", slip.Pension)
	assertDecimal(t, "2880000", slip.AnnualTaxableIncome)
	assertDecimal(t, "216000", slip.PayeTaxAnnual)
	assertDecimal(t, "18000", slip.PayeTax)
	assertDecimal(t, "53000", slip.TotalDeductions)
	assertDecimal(t, "207000", slip.NetSalary)
	assert.Len(t, slip.Allowances, 2)
	assert.Len(t, slip.Deductions, 1)
}

func TestCalculatePayslipAnnualisesBeforeBracketWalk(t *testing.T) {
	member := models.TeamMember{ID: "tm-3", SalaryInfo: &models.SalaryInfo{BaseSalary: dec(t, "100000")}}
	settings := models.PayrollSettings{
		EmployeePensionRate: dec(t, "0"),
		PayeBrackets: models.PayeBrackets{
			{UpTo: dec(t, "300000"), Rate: dec(t, "0.07")},
			{UpTo: dec(t, "5000000"), Rate: dec(t, "0.21")},
		},
	}

	slip := CalculatePayslip(member, 2024, 1, settings, payrollNow)

	require.NotNil(t, slip)
	// annual 1200000: 300000*0.07 + 900000*0.21 = 210000 -> 17500 a month.
	// Taxing the monthly 100000 directly would give 7000.
	assertDecimal(t, "210000", slip.PayeTaxAnnual)
	assertDecimal(t, "17500", slip.PayeTax)
	assertDecimal(t, "82500", slip.NetSalary)
}

func TestCalculatePayslipSkips(t *testing.T) {
	settings := singleBracketSettings(t)
	cases := []struct {
		name   string
		member models.TeamMember
	}{
		{"no salary info", models.TeamMember{ID: "tm"}},
		{"zero base salary", models.TeamMember{ID: "tm", SalaryInfo: &models.SalaryInfo{BaseSalary: decimal.Zero}}},
		{"negative base salary", models.TeamMember{ID: "tm", SalaryInfo: &models.SalaryInfo{BaseSalary: dec(t, "-5")}}},
		{"existing payslip", models.TeamMember{ID: "tm", SalaryInfo: &models.SalaryInfo{
			BaseSalary: dec(t, "300000"),
			Payslips:   []models.Payslip{{TeamMemberID: "tm", Year: 2024, Month: 11}},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, CalculatePayslip(tc.member, 2024, 11, settings, payrollNow))
		})
	}
}

func TestCalculatePayslipIsIdempotentOncePersisted(t *testing.T) {
	member := models.TeamMember{ID: "tm-1", SalaryInfo: &models.SalaryInfo{
		BaseSalary: dec(t, "300000"),
		Payslips:   []models.Payslip{{TeamMemberID: "tm-1", Year: 2024, Month: 10}},
	}}
	settings := singleBracketSettings(t)

	first := CalculatePayslip(member, 2024, 11, settings, payrollNow)
	require.NotNil(t, first)
	assert.Len(t, member.SalaryInfo.Payslips, 1, "calculator must not mutate the member")

	member.SalaryInfo.Payslips = append(member.SalaryInfo.Payslips, *first)
	assert.Nil(t, CalculatePayslip(member, 2024, 11, settings, payrollNow))
	assert.NotNil(t, CalculatePayslip(member, 2025, 11, settings, payrollNow))
}

func TestProgressiveTax(t *testing.T) {
	brackets := []models.PayeBracket{
		{UpTo: dec(t, "3000000"), Rate: dec(t, "0.15")},
		{UpTo: dec(t, "300000"), Rate: dec(t, "0.07")},
		{UpTo: dec(t, "600000"), Rate: dec(t, "0.11")},
	}

	cases := []struct {
		income string
		tax    string
	}{
		{"0", "0"},
		{"-1000", "0"},
		{"200000", "14000"},
		{"300000", "21000"},
		{"500000", "43000"},
		{"1000000", "114000"},
		{"3000000", "414000"},
		{"5000000", "414000"},
	}
	for _, tc := range cases {
		assertDecimal(t, tc.tax, ProgressiveTax(dec(t, tc.income), brackets), "income %s", tc.income)
	}
	assert.Equal(t, "3000000", brackets[0].UpTo.String(), "input order must be preserved")
}

func TestProgressiveTaxNoBrackets(t *testing.T) {
	assertDecimal(t, "0", ProgressiveTax(dec(t, "1000000"), nil))
}
