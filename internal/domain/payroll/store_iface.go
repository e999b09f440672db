package payroll

import "context"

type StoreAPI interface {
	Exists(ctx context.Context, employeeID string, month, year int) (bool, error)
	// Insert stores p unless a payslip for the same employee and period exists,
	// in which case it returns ErrPayslipExists.
	Insert(ctx context.Context, p Payslip) (string, error)
	List(ctx context.Context, filter ListFilter) ([]Detail, int, error)
	Get(ctx context.Context, id string) (Detail, error)
	Delete(ctx context.Context, id string) error
}
