package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrms/internal/platform/querier"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID          string `db:"id"`
	RoleID      string `db:"role_id"`
	RoleName    string `db:"role_name"`
	Password    string `db:"password_hash"`
	MFAEnabled  bool   `db:"mfa_enabled"`
	MFASecretEn []byte `db:"mfa_secret_enc"`
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id::text AS id, u.role_id::text AS role_id, r.name AS role_name,
           u.password_hash, u.mfa_enabled, u.mfa_secret_enc
    FROM users u
    JOIN roles r ON r.id = u.role_id
    WHERE lower(u.email) = lower($1) AND u.status = $2
  `, email, UserStatusActive)
	if err != nil {
		return AuthUser{}, err
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[AuthUser])
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	return user, err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, userID)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND refresh_token = $2 AND revoked_at IS NULL
  `, userID, tokenHash)
	return err
}

// SessionValid reports whether the session is live and its user still active.
func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var valid bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM sessions s
      JOIN users u ON u.id = s.user_id
      WHERE s.user_id = $1 AND s.refresh_token = $2
        AND s.revoked_at IS NULL AND s.expires_at > now()
        AND u.status = $3
    )
  `, userID, tokenHash, UserStatusActive).Scan(&valid)
	return valid, err
}

// RotateSession swaps the token hash of a live session in one statement, so a
// refresh token can be redeemed at most once.
func (s *Store) RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE sessions
    SET refresh_token = $1, expires_at = $2, rotated_at = now()
    WHERE user_id = $3 AND refresh_token = $4
      AND revoked_at IS NULL AND expires_at > now()
  `, newHash, expires, userID, oldHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// UpdateMFASecret stores a fresh secret and disables MFA until it is confirmed.
func (s *Store) UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error {
	_, err := s.DB.Exec(ctx, `UPDATE users SET mfa_secret_enc = $1, mfa_enabled = false WHERE id = $2`, secretEnc, userID)
	return err
}

func (s *Store) GetMFASecret(ctx context.Context, userID string) ([]byte, error) {
	var secretEnc []byte
	err := s.DB.QueryRow(ctx, `SELECT mfa_secret_enc FROM users WHERE id = $1`, userID).Scan(&secretEnc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return secretEnc, err
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, `UPDATE users SET mfa_enabled = $1 WHERE id = $2`, enabled, userID)
	return err
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var granted bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM role_permissions rp
      JOIN permissions p ON p.id = rp.permission_id
      WHERE rp.role_id = $1 AND p.key = $2
    )
  `, roleID, permission).Scan(&granted)
	return granted, err
}
