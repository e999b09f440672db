package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "u1", RoleID: "r1", RoleName: RoleHR, SessionID: "s1"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.RoleID != claims.RoleID || parsed.RoleName != claims.RoleName || parsed.SessionID != claims.SessionID {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("one", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("two", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected deterministic hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different hashes")
	}
}

type fakeStore struct {
	user      AuthUser
	sessions  map[string]bool
	lastLogin string
}

func newFakeStore(t *testing.T, password string) *fakeStore {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	return &fakeStore{
		user:     AuthUser{ID: "u1", RoleID: "r1", RoleName: RoleHR, Password: hash},
		sessions: map[string]bool{},
	}
}

func (f *fakeStore) FindActiveUserByEmail(_ context.Context, email string) (AuthUser, error) {
	if email != "hr@example.com" {
		return AuthUser{}, ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeStore) CreateSession(_ context.Context, _ string, tokenHash string, _ time.Time) error {
	f.sessions[tokenHash] = true
	return nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, userID string) error {
	f.lastLogin = userID
	return nil
}

func (f *fakeStore) RevokeSession(_ context.Context, _ string, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeStore) SessionValid(_ context.Context, _ string, tokenHash string) (bool, error) {
	return f.sessions[tokenHash], nil
}

func (f *fakeStore) RotateSession(_ context.Context, _ string, oldHash, newHash string, _ time.Time) error {
	if !f.sessions[oldHash] {
		return ErrSessionNotFound
	}
	delete(f.sessions, oldHash)
	f.sessions[newHash] = true
	return nil
}

func (f *fakeStore) UpdateMFASecret(context.Context, string, []byte) error { return nil }
func (f *fakeStore) GetMFASecret(context.Context, string) ([]byte, error) { return nil, nil }
func (f *fakeStore) SetMFAEnabled(context.Context, string, bool) error    { return nil }

func TestServiceLoginIssuesSessionToken(t *testing.T) {
	store := newFakeStore(t, "pw")
	svc := NewService(store, "secret", nil)

	result, err := svc.Login(context.Background(), "hr@example.com", "pw", "")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if result.User.SessionID == "" || !store.sessions[HashToken(result.User.SessionID)] {
		t.Fatal("expected persisted session")
	}
	if store.lastLogin != "u1" {
		t.Fatalf("expected last login update, got %q", store.lastLogin)
	}

	claims, err := ParseToken("secret", result.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.RoleName != RoleHR {
		t.Fatalf("unexpected role %q", claims.RoleName)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(newFakeStore(t, "pw"), "secret", nil)

	if _, err := svc.Login(context.Background(), "hr@example.com", "nope", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "pw", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestServiceLoginRequiresMFACode(t *testing.T) {
	store := newFakeStore(t, "pw")
	store.user.MFAEnabled = true
	store.user.MFASecretEn = []byte("JBSWY3DPEHPK3PXP")
	svc := NewService(store, "secret", nil)

	if _, err := svc.Login(context.Background(), "hr@example.com", "pw", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("expected mfa required, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "hr@example.com", "pw", "000000x"); !errors.Is(err, ErrMFAInvalid) {
		t.Fatalf("expected mfa invalid, got %v", err)
	}
}

func TestServiceRefreshRotatesAndLogoutRevokes(t *testing.T) {
	store := newFakeStore(t, "pw")
	svc := NewService(store, "secret", nil)

	login, err := svc.Login(context.Background(), "hr@example.com", "pw", "")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected rotated session to be rejected, got %v", err)
	}

	claims, err := ParseToken("secret", refreshed)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := svc.Logout(context.Background(), UserContext{UserID: claims.UserID, SessionID: claims.SessionID}); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), refreshed); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected revoked session to be rejected, got %v", err)
	}
}

func TestServiceMFASetupNeedsEncryption(t *testing.T) {
	svc := NewService(newFakeStore(t, "pw"), "secret", nil)
	if _, err := svc.SetupMFA(context.Background(), "u1"); !errors.Is(err, ErrMFAUnavailable) {
		t.Fatalf("expected mfa unavailable, got %v", err)
	}
}

func TestRolePermissionsAreDeclared(t *testing.T) {
	declared := map[string]bool{}
	for _, perm := range DefaultPermissions {
		declared[perm] = true
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if !declared[perm] {
				t.Fatalf("role %s grants undeclared permission %q", role, perm)
			}
		}
	}
	if SeesAllPayslips(RoleEmployee) || !SeesAllPayslips(RoleHR) {
		t.Fatal("only HR sees every payslip")
	}
}
