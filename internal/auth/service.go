package auth

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials. Inactive accounts
// and unknown emails fail identically so the response does not leak
// which one it was.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs an API access token for the user.
func (s *Service) IssueToken(user *User) (string, time.Time, error) {
	now := time.Now().UTC()
	token, err := s.tokens.Issue(user, now)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(s.tokens.TTL()), nil
}

// VerifyToken validates an API access token and loads the account it
// belongs to, so a deactivated account cannot keep using old tokens.
func (s *Service) VerifyToken(ctx context.Context, raw string) (*User, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidToken
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions removes session rows past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, now)
}

// FindUser loads an account by ID.
func (s *Service) FindUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
