package users

import (
	"context"
	"fmt"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	SetRole(ctx context.Context, id int64, roleID string) (User, error)
	SetActive(ctx context.Context, id int64, active bool) (User, error)
}

// Service handles account administration.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// AssignRole moves the account onto another catalog role.
func (s *Service) AssignRole(ctx context.Context, actorID, id int64, roleID string) (User, error) {
	if _, ok := authz.Lookup(roleID); !ok {
		return User{}, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, roleID)
	}
	user, err := s.repo.SetRole(ctx, id, roleID)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.assign_role", id, map[string]any{"role_id": roleID})
	return user, nil
}

// SetActive enables or disables the account.
func (s *Service) SetActive(ctx context.Context, actorID, id int64, active bool) (User, error) {
	if actorID == id && !active {
		return User{}, fmt.Errorf("%w: cannot deactivate your own account", httpx.ErrForbidden)
	}
	user, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return User{}, err
	}
	action := "user.deactivate"
	if active {
		action = "user.activate"
	}
	s.record(ctx, actorID, action, id, nil)
	return user, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}
