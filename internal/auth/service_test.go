package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

type stubRepo struct {
	user          *auth.User
	deleted       []string
	purged        int64
	onFindByEmail func()
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.onFindByEmail != nil {
		s.onFindByEmail()
	}
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return s.purged, nil
}

func hashedUser(t *testing.T, password string, active bool) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{
		ID:           1,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
		RoleID:       authz.RoleEmployee,
		IsActive:     active,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &stubRepo{user: hashedUser(t, "correct-horse", true)}
	svc := auth.NewService(repo, auth.NewTokenIssuer("secret", time.Hour))

	user, err := svc.Authenticate(context.Background(), "user@test.local", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &stubRepo{user: hashedUser(t, "correct-horse", true)}
	svc := auth.NewService(repo, auth.NewTokenIssuer("secret", time.Hour))

	if _, err := svc.Authenticate(context.Background(), "user@test.local", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &stubRepo{user: hashedUser(t, "correct-horse", false)}
	svc := auth.NewService(repo, auth.NewTokenIssuer("secret", time.Hour))

	if _, err := svc.Authenticate(context.Background(), "user@test.local", "correct-horse"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("inactive account must fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyTokenDeactivatedAccount(t *testing.T) {
	user := hashedUser(t, "correct-horse", true)
	repo := &stubRepo{user: user}
	svc := auth.NewService(repo, auth.NewTokenIssuer("secret", time.Hour))

	token, _, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.VerifyToken(context.Background(), token); err != nil {
		t.Fatalf("verify while active: %v", err)
	}

	user.IsActive = false
	if _, err := svc.VerifyToken(context.Background(), token); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("deactivated account must invalidate tokens, got %v", err)
	}
}
