package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/domain/employee"
	"hrms/internal/domain/policy"
	"hrms/internal/domain/salary"
)

var monthDays = decimal.NewFromInt(PayrollMonthDays)

// PayableDays applies the 30-day model: a full month unless the employee joined
// inside the target month, in which case days from the joining day to day 30
// are paid. Joining after the month pays nothing.
func PayableDays(dateOfJoining time.Time, month, year int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(dateOfJoining.Year(), dateOfJoining.Month(), dateOfJoining.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case joined.Before(first):
		return PayrollMonthDays
	case joined.After(LastDayOfMonth(month, year)):
		return 0
	}
	return min(max(PayrollMonthDays-joined.Day()+1, 0), PayrollMonthDays)
}

func LastDayOfMonth(month, year int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// JoinedAfter reports whether the employee joins after the target month ends.
func JoinedAfter(dateOfJoining time.Time, month, year int) bool {
	joined := time.Date(dateOfJoining.Year(), dateOfJoining.Month(), dateOfJoining.Day(), 0, 0, 0, 0, time.UTC)
	return joined.After(LastDayOfMonth(month, year))
}

func prorate(value decimal.Decimal, payable int) decimal.Decimal {
	if payable == PayrollMonthDays {
		return value.Round(2)
	}
	return value.Mul(decimal.NewFromInt(int64(payable))).Div(monthDays).Round(2)
}

// ComputePayslip derives every payslip amount for one employee. Percentage
// components round half-up to two places, ESIC rounds up to a whole unit.
// ESIC eligibility reads the stored gross as is, a zero gross counts as
// eligible. The only error is an undecodable slab list when professional
// tax applies.
func ComputePayslip(emp employee.Employee, structure salary.Structure, month, year int, snap policy.Snapshot) (Payslip, error) {
	payable := PayableDays(emp.DateOfJoining, month, year)

	p := Payslip{
		EmployeeID: emp.ID,
		Month:      month,
		Year:       year,
		DaysWorked: payable,
		Basic:      prorate(structure.Basic, payable),
		HRA:        prorate(structure.HRA, payable),
		DA:         prorate(structure.DA, payable),
		Allowances: prorate(structure.Allowances, payable),
		PF:         decimal.Zero,
		ESIC:       decimal.Zero,
		PTax:       decimal.Zero,
	}
	earned := p.Basic.Add(p.HRA).Add(p.DA).Add(p.Allowances)
	p.GrossSalary = earned
	p.TotalEarnings = earned

	if snap.PFEnabled && !emp.PFOptOut {
		p.PF = p.Basic.Mul(snap.PFRate).Round(2)
	}

	// Eligibility uses the full monthly gross, the amount uses what was earned.
	if snap.ESICEnabled && !emp.ESICOptOut && structure.GrossSalary.LessThanOrEqual(snap.ESICWageLimit) {
		p.ESIC = earned.Mul(snap.ESICRate).Ceil()
	}

	if snap.PTaxEnabled && !emp.PTaxOptOut {
		slabs, err := snap.Slabs()
		if err != nil {
			return Payslip{}, err
		}
		if slab, ok := policy.FindSlab(slabs, earned); ok {
			p.PTax = slab.TaxAmount
		}
	}

	p.TotalDeductions = p.PF.Add(p.ESIC).Add(p.PTax)
	p.NetPay = earned.Sub(p.TotalDeductions)
	return p, nil
}
