package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrms/internal/domain/employee"
	"hrms/internal/domain/policy"
	"hrms/internal/domain/salary"
	"hrms/internal/platform/requestctx"
)

type EmployeeLister interface {
	List(ctx context.Context) ([]employee.Employee, error)
}

type SalaryReader interface {
	Current(ctx context.Context, employeeID string) (salary.Structure, error)
}

type PolicyReader interface {
	Snapshot(ctx context.Context) (policy.Snapshot, error)
}

// RunRecorder receives the tallies of every completed run.
type RunRecorder interface {
	RecordPayrollRun(generated, skipped, errored int)
}

type Service struct {
	Store     StoreAPI
	Employees EmployeeLister
	Salaries  SalaryReader
	Policy    PolicyReader
	Recorder  RunRecorder
	Now       func() time.Time
}

func NewService(store StoreAPI, employees EmployeeLister, salaries SalaryReader, policies PolicyReader) *Service {
	return &Service{
		Store:     store,
		Employees: employees,
		Salaries:  salaries,
		Policy:    policies,
		Now:       time.Now,
	}
}

// Run generates payslips for every employee for the given period. Zero month
// or year selects the current one. Failing to load the policy or the employee
// set aborts the run; any per-employee failure is logged and counted.
func (s *Service) Run(ctx context.Context, month, year int) (RunSummary, error) {
	month, year, err := s.resolvePeriod(month, year)
	if err != nil {
		return RunSummary{}, err
	}

	snap, err := s.Policy.Snapshot(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("payroll run %02d/%d: load policy: %w", month, year, err)
	}
	employees, err := s.Employees.List(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("payroll run %02d/%d: load employees: %w", month, year, err)
	}

	logger := requestctx.Logger(ctx)
	summary := RunSummary{Month: month, Year: year, Outcomes: make([]Outcome, 0, len(employees))}
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome := s.generateSafely(ctx, emp, month, year, snap)
		logOutcome(logger, outcome, month, year)
		summary.add(outcome)
	}

	logger.Info("payroll run completed",
		"month", month,
		"year", year,
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
	)
	if s.Recorder != nil {
		s.Recorder.RecordPayrollRun(summary.Generated, summary.Skipped, summary.Errored)
	}
	return summary, nil
}

// GeneratePayslip processes one employee. Skips are reported through the
// outcome with a nil error; a non-nil error always comes with StatusErrored.
func (s *Service) GeneratePayslip(ctx context.Context, emp employee.Employee, month, year int, snap policy.Snapshot) (Outcome, error) {
	outcome := Outcome{EmployeeID: emp.ID}

	if !emp.AccountActive {
		outcome.Status = StatusSkippedNoAccount
		return outcome, nil
	}

	structure, err := s.Salaries.Current(ctx, emp.ID)
	if errors.Is(err, salary.ErrNotFound) {
		outcome.Status = StatusSkippedNoSalary
		return outcome, nil
	}
	if err != nil {
		return errored(outcome, fmt.Errorf("load salary structure: %w", err))
	}

	exists, err := s.Store.Exists(ctx, emp.ID, month, year)
	if err != nil {
		return errored(outcome, fmt.Errorf("check existing payslip: %w", err))
	}
	if exists {
		outcome.Status = StatusSkippedExists
		return outcome, nil
	}

	if JoinedAfter(emp.DateOfJoining, month, year) {
		outcome.Status = StatusSkippedNotJoined
		return outcome, nil
	}

	payslip, err := ComputePayslip(emp, structure, month, year, snap)
	if err != nil {
		return errored(outcome, fmt.Errorf("compute payslip: %w", err))
	}
	payslip.GeneratedOn = s.Now().UTC()

	id, err := s.Store.Insert(ctx, payslip)
	if errors.Is(err, ErrPayslipExists) {
		outcome.Status = StatusSkippedExists
		return outcome, nil
	}
	if err != nil {
		return errored(outcome, fmt.Errorf("insert payslip: %w", err))
	}

	outcome.Status = StatusGenerated
	outcome.PayslipID = id
	return outcome, nil
}

func (s *Service) generateSafely(ctx context.Context, emp employee.Employee, month, year int, snap policy.Snapshot) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Outcome{EmployeeID: emp.ID, Status: StatusErrored, Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	outcome, _ = s.GeneratePayslip(ctx, emp, month, year, snap)
	return outcome
}

func errored(outcome Outcome, err error) (Outcome, error) {
	outcome.Status = StatusErrored
	outcome.Error = err.Error()
	return outcome, err
}

func logOutcome(logger *slog.Logger, o Outcome, month, year int) {
	attrs := []any{"employeeId", o.EmployeeID, "month", month, "year", year, "outcome", string(o.Status)}
	switch o.Status {
	case StatusErrored:
		logger.Error("payslip generation failed", append(attrs, "err", o.Error)...)
	case StatusSkippedNoSalary:
		logger.Warn("employee has no salary structure", attrs...)
	case StatusGenerated:
		logger.Info("payslip generated", append(attrs, "payslipId", o.PayslipID)...)
	default:
		logger.Info("payslip skipped", attrs...)
	}
}

func (s *Service) resolvePeriod(month, year int) (int, int, error) {
	now := s.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 9999 {
		return 0, 0, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return month, year, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Detail, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Store.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	requestctx.Logger(ctx).Info("payslip deleted", "payslipId", id)
	return nil
}
