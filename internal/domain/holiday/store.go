package holiday

import (
	"context"
	"time"

	"hrms/internal/platform/querier"
)

const selectHoliday = `
    SELECT id, name, start_date, end_date, scope_type,
           COALESCE(department_id::text, ''), COALESCE(location, '')
    FROM holidays
`

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListOverlapping(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, selectHoliday+`
    WHERE start_date <= $2 AND end_date >= $1
    ORDER BY start_date, created_at, id
  `, Day(from), Day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		var scope string
		if err := rows.Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate, &scope, &h.DepartmentID, &h.Location); err != nil {
			return nil, err
		}
		h.ScopeType = ScopeType(scope)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, h Holiday) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, start_date, end_date, scope_type, department_id, location)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, h.Name, Day(h.StartDate), Day(h.EndDate), string(h.ScopeType), nullIfEmpty(h.DepartmentID), nullIfEmpty(h.Location)).Scan(&id)
	return id, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", id)
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
