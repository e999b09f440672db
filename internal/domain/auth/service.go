package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
	ErrMFAUnavailable     = errors.New("mfa requires encryption key")
	ErrMFAMissing         = errors.New("mfa setup required")
	ErrSessionExpired     = errors.New("session expired")
)

const sessionTTL = 8 * time.Hour

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error
	UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error
	GetMFASecret(ctx context.Context, userID string) ([]byte, error)
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
}

// SecretBox encrypts MFA secrets at rest.
type SecretBox interface {
	Configured() bool
	EncryptString(value string) ([]byte, error)
	DecryptString(value []byte) (string, error)
}

type Service struct {
	Store  StoreAPI
	Secret string
	Crypto SecretBox
	Issuer string
}

func NewService(store StoreAPI, secret string, crypto SecretBox) *Service {
	return &Service{Store: store, Secret: secret, Crypto: crypto, Issuer: "HRMS"}
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserContext `json:"-"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if mfaCode == "" {
			return LoginResult{}, ErrMFARequired
		}
		secret, err := s.decodeSecret(user.MFASecretEn)
		if err != nil || secret == "" || !totp.Validate(mfaCode, secret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	sessionID, err := randomToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.CreateSession(ctx, user.ID, HashToken(sessionID), time.Now().Add(sessionTTL)); err != nil {
		return LoginResult{}, err
	}

	principal := UserContext{UserID: user.ID, RoleID: user.RoleID, RoleName: user.RoleName, SessionID: sessionID}
	token, err := s.issue(principal)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{Token: token, User: principal}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.Store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID))
}

// Refresh rotates the session behind tokenString and returns a new token.
func (s *Service) Refresh(ctx context.Context, tokenString string) (string, error) {
	claims, err := ParseToken(s.Secret, tokenString)
	if err != nil {
		return "", ErrSessionExpired
	}

	newSessionID, err := randomToken()
	if err != nil {
		return "", err
	}
	err = s.Store.RotateSession(ctx, claims.UserID, HashToken(claims.SessionID), HashToken(newSessionID), time.Now().Add(sessionTTL))
	if errors.Is(err, ErrSessionNotFound) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", err
	}
	return s.issue(UserContext{
		UserID:    claims.UserID,
		RoleID:    claims.RoleID,
		RoleName:  claims.RoleName,
		SessionID: newSessionID,
	})
}

func (s *Service) SetupMFA(ctx context.Context, userID string) (MFASetup, error) {
	if s.Crypto == nil || !s.Crypto.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: userID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, err
	}
	encrypted, err := s.Crypto.EncryptString(key.Secret())
	if err != nil {
		return MFASetup{}, err
	}
	if err := s.Store.UpdateMFASecret(ctx, userID, encrypted); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) SetMFA(ctx context.Context, userID, code string, enabled bool) error {
	if s.Crypto == nil || !s.Crypto.Configured() {
		return ErrMFAUnavailable
	}
	secretEnc, err := s.Store.GetMFASecret(ctx, userID)
	if err != nil || len(secretEnc) == 0 {
		return ErrMFAMissing
	}
	secret, err := s.Crypto.DecryptString(secretEnc)
	if err != nil || !totp.Validate(code, secret) {
		return ErrMFAInvalid
	}
	return s.Store.SetMFAEnabled(ctx, userID, enabled)
}

func (s *Service) issue(user UserContext) (string, error) {
	return GenerateToken(s.Secret, Claims{
		UserID:    user.UserID,
		RoleID:    user.RoleID,
		RoleName:  user.RoleName,
		SessionID: user.SessionID,
	}, sessionTTL)
}

func (s *Service) decodeSecret(secretEnc []byte) (string, error) {
	if s.Crypto != nil && s.Crypto.Configured() {
		return s.Crypto.DecryptString(secretEnc)
	}
	return string(secretEnc), nil
}

func randomToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
