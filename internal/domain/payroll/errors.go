package payroll

import "errors"

var (
	ErrPayslipExists = errors.New("payslip already exists for period")
	ErrNotFound      = errors.New("payslip not found")
	ErrInvalidPeriod = errors.New("invalid payroll period")
)
