package payroll

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

const selectDetail = `
    SELECT p.id, p.employee_id, p.month, p.year, p.days_worked,
           p.basic::text, p.hra::text, p.da::text, p.allowances::text, p.gross_salary::text,
           p.pf::text, p.esic::text, p.ptax::text,
           p.total_earnings::text, p.total_deductions::text, p.net_pay::text,
           p.generated_on,
           e.first_name || ' ' || e.last_name, e.email, COALESCE(e.user_id::text, '')
    FROM payslips p
    JOIN employees e ON e.id = p.employee_id
`

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Exists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM payslips WHERE employee_id = $1 AND month = $2 AND year = $3)
  `, employeeID, month, year).Scan(&exists)
	return exists, err
}

func (s *Store) Insert(ctx context.Context, p Payslip) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payslips (employee_id, month, year, days_worked, basic, hra, da, allowances, gross_salary,
      pf, esic, ptax, total_earnings, total_deductions, net_pay, generated_on)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
    ON CONFLICT ON CONSTRAINT payslips_employee_period_key DO NOTHING
    RETURNING id
  `,
		p.EmployeeID, p.Month, p.Year, p.DaysWorked, p.Basic, p.HRA, p.DA, p.Allowances, p.GrossSalary,
		p.PF, p.ESIC, p.PTax, p.TotalEarnings, p.TotalDeductions, p.NetPay, p.GeneratedOn,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPayslipExists
	}
	return id, err
}

func scanDetail(row pgx.Row) (Detail, error) {
	var d Detail
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.Month, &d.Year, &d.DaysWorked,
		&d.Basic, &d.HRA, &d.DA, &d.Allowances, &d.GrossSalary,
		&d.PF, &d.ESIC, &d.PTax,
		&d.TotalEarnings, &d.TotalDeductions, &d.NetPay,
		&d.GeneratedOn,
		&d.EmployeeName, &d.EmployeeEmail, &d.EmployeeUserID,
	)
	return d, err
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Detail, int, error) {
	var where []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.EmployeeID != "" {
		add("p.employee_id = ?", filter.EmployeeID)
	}
	if filter.Month > 0 {
		add("p.month = ?", filter.Month)
	}
	if filter.Year > 0 {
		add("p.year = ?", filter.Year)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payslips p"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := len(args) + 1
	query := selectDetail + clause +
		" ORDER BY p.year DESC, p.month DESC, e.last_name, e.first_name" +
		" LIMIT $" + strconv.Itoa(limitArg) + " OFFSET $" + strconv.Itoa(limitArg+1)
	rows, err := s.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Detail, error) {
	d, err := scanDetail(s.DB.QueryRow(ctx, selectDetail+" WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	return d, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM payslips WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
