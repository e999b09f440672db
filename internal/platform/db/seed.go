package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/policy"
	"hrms/internal/platform/config"
)

// DefaultLeaveTypes are created on first start.
var DefaultLeaveTypes = []struct {
	Name string
	Paid bool
}{
	{"Casual Leave", true},
	{"Sick Leave", true},
	{"Earned Leave", true},
	{"Leave Without Pay", false},
}

// Seed makes the database usable on first start. It runs in one transaction
// and every statement is idempotent, so it is safe on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := ensurePermissions(ctx, tx); err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
		roleIDs, err := ensureRoles(ctx, tx)
		if err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		if err := ensureRolePermissions(ctx, tx, roleIDs); err != nil {
			return fmt.Errorf("seed role permissions: %w", err)
		}
		if err := ensureAdminUser(ctx, tx, roleIDs[auth.RoleHR], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		if err := policy.NewStore(tx).SetDefaults(ctx, policy.Defaults()); err != nil {
			return fmt.Errorf("seed payroll settings: %w", err)
		}
		if err := ensureLeaveTypes(ctx, tx); err != nil {
			return fmt.Errorf("seed leave types: %w", err)
		}
		return nil
	})
}

func ensurePermissions(ctx context.Context, tx pgx.Tx) error {
	batch := &pgx.Batch{}
	for _, perm := range auth.DefaultPermissions {
		batch.Queue(`INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, perm)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func ensureRoles(ctx context.Context, tx pgx.Tx) (map[string]string, error) {
	roleIDs := make(map[string]string, len(auth.RolePermissions))
	for roleName := range auth.RolePermissions {
		var id string
		err := tx.QueryRow(ctx, `
      INSERT INTO roles (name) VALUES ($1)
      ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id::text
    `, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

// ensureRolePermissions grants each role its default keys. Grants added by
// hand are left alone.
func ensureRolePermissions(ctx context.Context, tx pgx.Tx, roleIDs map[string]string) error {
	batch := &pgx.Batch{}
	for roleName, perms := range auth.RolePermissions {
		batch.Queue(`
      INSERT INTO role_permissions (role_id, permission_id)
      SELECT $1::uuid, p.id FROM permissions p WHERE p.key = ANY($2)
      ON CONFLICT DO NOTHING
    `, roleIDs[roleName], perms)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func ensureAdminUser(ctx context.Context, tx pgx.Tx, roleID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO users (email, password_hash, role_id) VALUES ($1, $2, $3)`, email, hash, roleID); err != nil {
		return err
	}
	slog.Info("seeded admin user", "email", email)
	return nil
}

func ensureLeaveTypes(ctx context.Context, tx pgx.Tx) error {
	batch := &pgx.Batch{}
	for _, lt := range DefaultLeaveTypes {
		batch.Queue(`INSERT INTO leave_types (name, is_paid) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, lt.Name, lt.Paid)
	}
	return tx.SendBatch(ctx, batch).Close()
}
