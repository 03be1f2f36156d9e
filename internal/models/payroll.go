package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalaryItem is a named allowance or deduction.
type SalaryItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// SalaryItems is persisted as a JSONB array.
type SalaryItems []SalaryItem

// Value marshals the items to JSON for persistence.
func (s SalaryItems) Value() (driver.Value, error) {
	if s == nil {
		s = SalaryItems{}
	}
	return marshalJSONB(s, "salary items")
}

// Scan unmarshals JSON payloads into salary items.
func (s *SalaryItems) Scan(value interface{}) error {
	*s = nil
	return unmarshalJSONB(value, s, "salary items")
}

// Total sums the item amounts.
func (s SalaryItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		total = total.Add(item.Amount)
	}
	return total
}

// SalaryInfo is the pay configuration of a team member. Payslips are stored separately
// and attached when the member is loaded.
type SalaryInfo struct {
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances SalaryItems     `json:"allowances"`
	Deductions SalaryItems     `json:"deductions"`
	Payslips   []Payslip       `json:"payslips,omitempty"`
}

type salaryInfoColumn struct {
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances SalaryItems     `json:"allowances"`
	Deductions SalaryItems     `json:"deductions"`
}

// Value marshals the salary configuration, without payslips, for persistence.
func (s SalaryInfo) Value() (driver.Value, error) {
	return marshalJSONB(salaryInfoColumn{BaseSalary: s.BaseSalary, Allowances: s.Allowances, Deductions: s.Deductions}, "salary info")
}

// Scan unmarshals JSON payloads into the salary configuration.
func (s *SalaryInfo) Scan(value interface{}) error {
	var column salaryInfoColumn
	if err := unmarshalJSONB(value, &column, "salary info"); err != nil {
		return err
	}
	*s = SalaryInfo{BaseSalary: column.BaseSalary, Allowances: column.Allowances, Deductions: column.Deductions}
	return nil
}

// TeamMember is a staff record.
type TeamMember struct {
	ID         string      `db:"id" json:"id"`
	SchoolID   string      `db:"school_id" json:"school_id"`
	FullName   string      `db:"full_name" json:"full_name"`
	Role       string      `db:"role" json:"role"`
	SalaryInfo *SalaryInfo `db:"salary_info" json:"salary_info,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// PayeBracket taxes the slice of annual income between the previous bracket's UpTo and its own.
type PayeBracket struct {
	UpTo decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal `json:"rate"`
}

// PayeBrackets is persisted as a JSONB array.
type PayeBrackets []PayeBracket

// Value marshals the brackets to JSON for persistence.
func (b PayeBrackets) Value() (driver.Value, error) {
	if b == nil {
		b = PayeBrackets{}
	}
	return marshalJSONB(b, "paye brackets")
}

// Scan unmarshals JSON payloads into brackets.
func (b *PayeBrackets) Scan(value interface{}) error {
	*b = nil
	return unmarshalJSONB(value, b, "paye brackets")
}

// PayrollSettings holds the school-wide pension and tax configuration.
type PayrollSettings struct {
	SchoolID            string          `db:"school_id" json:"school_id"`
	EmployeePensionRate decimal.Decimal `db:"employee_pension_rate" json:"employee_pension_rate"`
	PayeBrackets        PayeBrackets    `db:"paye_brackets" json:"paye_brackets"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// Payslip is one computed pay run. (TeamMemberID, Year, Month) is its natural key.
type Payslip struct {
	ID                  string          `db:"id" json:"id"`
	TeamMemberID        string          `db:"team_member_id" json:"team_member_id"`
	Year                int             `db:"year" json:"year"`
	Month               int             `db:"month" json:"month"`
	BaseSalary          decimal.Decimal `db:"base_salary" json:"base_salary"`
	Allowances          SalaryItems     `db:"allowances" json:"allowances"`
	Deductions          SalaryItems     `db:"deductions" json:"deductions"`
	GrossSalary         decimal.Decimal `db:"gross_salary" json:"gross_salary"`
	PensionRate         decimal.Decimal `db:"pension_rate" json:"pension_rate"`
	Pension             decimal.Decimal `db:"pension" json:"pension"`
	AnnualTaxableIncome decimal.Decimal `db:"annual_taxable_income" json:"annual_taxable_income"`
	PayeTaxAnnual       decimal.Decimal `db:"paye_tax_annual" json:"paye_tax_annual"`
	PayeTax             decimal.Decimal `db:"paye_tax" json:"paye_tax"`
	TotalDeductions     decimal.Decimal `db:"total_deductions" json:"total_deductions"`
	NetSalary           decimal.Decimal `db:"net_salary" json:"net_salary"`
	GeneratedAt         time.Time       `db:"generated_at" json:"generated_at"`
}

// Key returns the natural key of the payslip.
func (p Payslip) Key() PayslipKey {
	return PayslipKey{TeamMemberID: p.TeamMemberID, Year: p.Year, Month: p.Month}
}

// PayslipKey identifies one pay run of one team member.
type PayslipKey struct {
	TeamMemberID string `json:"team_member_id"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
}

// String renders the key for logs.
func (k PayslipKey) String() string {
	return fmt.Sprintf("%s:%04d-%02d", k.TeamMemberID, k.Year, k.Month)
}
