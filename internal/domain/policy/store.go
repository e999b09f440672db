package policy

import (
	"context"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

// TxBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
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

func (s *Store) Values(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT key, value FROM payroll_settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// Set writes every value in one transaction, so a failed key leaves the
// stored settings untouched.
func (s *Store) Set(ctx context.Context, values map[string]string) error {
	return s.write(ctx, values, `
    INSERT INTO payroll_settings (key, value)
    VALUES ($1, $2)
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
  `)
}

// SetDefaults writes values only for keys that are not present yet.
func (s *Store) SetDefaults(ctx context.Context, values map[string]string) error {
	return s.write(ctx, values, `
    INSERT INTO payroll_settings (key, value)
    VALUES ($1, $2)
    ON CONFLICT (key) DO NOTHING
  `)
}

func (s *Store) write(ctx context.Context, values map[string]string, sql string) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		for key, value := range values {
			if _, err := tx.Exec(ctx, sql, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
