package leave

import (
	"context"

	"hrms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListBalances(ctx context.Context, employeeID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.employee_id, b.leave_type_id, t.name, t.is_paid,
           b.allocated_days::text, b.used_days::text, b.updated_at
    FROM leave_balances b
    JOIN leave_types t ON t.id = b.leave_type_id
    WHERE b.employee_id = $1
    ORDER BY t.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.EmployeeID, &b.LeaveTypeID, &b.LeaveTypeName, &b.Paid,
			&b.AllocatedDays, &b.UsedDays, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
