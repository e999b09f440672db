package salary

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	querier.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	DB TxBeginner
}

func NewStore(db TxBeginner) *Store {
	return &Store{DB: db}
}

// Current returns the single current structure for an employee.
func (s *Store) Current(ctx context.Context, employeeID string) (Structure, error) {
	return current(ctx, s.DB, employeeID)
}

func current(ctx context.Context, q querier.Querier, employeeID string) (Structure, error) {
	var out Structure
	err := q.QueryRow(ctx, `
    SELECT employee_id, basic::text, hra::text, da::text, allowances::text, gross_salary::text,
           effective_from, updated_at
    FROM salary_structures
    WHERE employee_id = $1
  `, employeeID).Scan(&out.EmployeeID, &out.Basic, &out.HRA, &out.DA, &out.Allowances, &out.GrossSalary,
		&out.EffectiveFrom, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Structure{}, ErrNotFound
	}
	return out, err
}

// Upsert replaces the current structure, archiving the previous one.
func (s *Store) Upsert(ctx context.Context, in Structure) (Structure, error) {
	in = in.Normalize()
	if in.EffectiveFrom.IsZero() {
		in.EffectiveFrom = time.Now().UTC().Truncate(24 * time.Hour)
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Structure{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO salary_structure_history (employee_id, basic, hra, da, allowances, gross_salary, effective_from)
    SELECT employee_id, basic, hra, da, allowances, gross_salary, effective_from
    FROM salary_structures
    WHERE employee_id = $1
  `, in.EmployeeID); err != nil {
		return Structure{}, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO salary_structures (employee_id, basic, hra, da, allowances, gross_salary, effective_from)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (employee_id) DO UPDATE SET
      basic = EXCLUDED.basic,
      hra = EXCLUDED.hra,
      da = EXCLUDED.da,
      allowances = EXCLUDED.allowances,
      gross_salary = EXCLUDED.gross_salary,
      effective_from = EXCLUDED.effective_from,
      updated_at = now()
  `, in.EmployeeID, in.Basic, in.HRA, in.DA, in.Allowances, in.GrossSalary, in.EffectiveFrom); err != nil {
		return Structure{}, err
	}

	out, err := current(ctx, tx, in.EmployeeID)
	if err != nil {
		return Structure{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Structure{}, err
	}
	return out, nil
}

func (s *Store) History(ctx context.Context, employeeID string) ([]Revision, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, basic::text, hra::text, da::text, allowances::text, gross_salary::text,
           effective_from, archived_at
    FROM salary_structure_history
    WHERE employee_id = $1
    ORDER BY archived_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.EmployeeID, &r.Basic, &r.HRA, &r.DA, &r.Allowances, &r.GrossSalary,
			&r.EffectiveFrom, &r.ArchivedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
