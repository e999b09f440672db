package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrms/internal/platform/querier"
)

const uniqueViolation = "23505"

const selectEmployee = `
    SELECT e.id,
           COALESCE(e.user_id::text, ''),
           e.first_name, e.last_name, e.email,
           COALESCE(e.department_id::text, ''),
           e.location,
           e.date_of_joining,
           COALESCE(u.status = 'active', false),
           e.pf_opt_out, e.esic_opt_out, e.ptax_opt_out,
           e.created_at
    FROM employees e
    LEFT JOIN users u ON u.id = e.user_id
`

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.DepartmentID, &emp.Location, &emp.DateOfJoining, &emp.AccountActive,
		&emp.PFOptOut, &emp.ESICOptOut, &emp.PTaxOptOut, &emp.CreatedAt,
	)
	return emp, err
}

// List returns every employee ordered by id so batch runs are deterministic.
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, selectEmployee+" ORDER BY e.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, selectEmployee+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, selectEmployee+" WHERE e.user_id = $1", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) Create(ctx context.Context, in NewEmployee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (user_id, first_name, last_name, email, department_id, location,
      date_of_joining, pf_opt_out, esic_opt_out, ptax_opt_out)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `,
		nullIfEmpty(in.UserID), in.FirstName, in.LastName, in.Email, nullIfEmpty(in.DepartmentID), in.Location,
		in.DateOfJoining, in.PFOptOut, in.ESICOptOut, in.PTaxOptOut,
	).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return "", ErrEmailExists
	}
	return id, err
}

func (s *Store) UpdateStatutory(ctx context.Context, id string, flags Statutory) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET pf_opt_out = $2, esic_opt_out = $3, ptax_opt_out = $4
    WHERE id = $1
  `, id, flags.PFOptOut, flags.ESICOptOut, flags.PTaxOptOut)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
