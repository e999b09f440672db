package payroll

// PayrollMonthDays is the fixed month length used for proration.
const PayrollMonthDays = 30

type Status string

const (
	StatusGenerated        Status = "generated"
	StatusSkippedNoAccount Status = "skipped_no_account"
	StatusSkippedNoSalary  Status = "skipped_no_salary"
	StatusSkippedExists    Status = "skipped_exists"
	StatusSkippedNotJoined Status = "skipped_not_joined"
	StatusErrored          Status = "errored"
)

// IsError reports whether the status counts toward a run's error tally. A
// missing salary structure is a data error even though no payslip is attempted.
func (s Status) IsError() bool {
	return s == StatusErrored || s == StatusSkippedNoSalary
}

func (s Status) IsSkip() bool {
	switch s {
	case StatusSkippedNoAccount, StatusSkippedExists, StatusSkippedNotJoined:
		return true
	}
	return false
}
