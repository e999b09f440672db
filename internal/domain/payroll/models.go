package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payslip struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	DaysWorked      int             `json:"daysWorked"`
	Basic           decimal.Decimal `json:"basic"`
	HRA             decimal.Decimal `json:"hra"`
	DA              decimal.Decimal `json:"da"`
	Allowances      decimal.Decimal `json:"allowances"`
	GrossSalary     decimal.Decimal `json:"grossSalary"`
	PF              decimal.Decimal `json:"pf"`
	ESIC            decimal.Decimal `json:"esic"`
	PTax            decimal.Decimal `json:"ptax"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
	GeneratedOn     time.Time       `json:"generatedOn"`
}

// Detail is a payslip joined with the employee fields shown on documents.
type Detail struct {
	Payslip
	EmployeeName   string `json:"employeeName"`
	EmployeeEmail  string `json:"employeeEmail"`
	EmployeeUserID string `json:"-"`
}

// Outcome is the result of processing one employee for one period.
type Outcome struct {
	EmployeeID string `json:"employeeId"`
	Status     Status `json:"status"`
	PayslipID  string `json:"payslipId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type RunSummary struct {
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Generated int       `json:"generated"`
	Skipped   int       `json:"skipped"`
	Errored   int       `json:"errored"`
	Outcomes  []Outcome `json:"outcomes"`
}

func (r RunSummary) SkippedOrErrored() int {
	return r.Skipped + r.Errored
}

func (r *RunSummary) add(o Outcome) {
	switch {
	case o.Status == StatusGenerated:
		r.Generated++
	case o.Status.IsError():
		r.Errored++
	case o.Status.IsSkip():
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

type ListFilter struct {
	EmployeeID string
	Month      int
	Year       int
	Limit      int
	Offset     int
}
