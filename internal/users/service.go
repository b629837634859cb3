package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/entity"
	"github.com/instamunch/instamunch-api/internal/mutation"
	"github.com/instamunch/instamunch-api/internal/record"
	"github.com/instamunch/instamunch-api/internal/shared"
	"github.com/instamunch/instamunch-api/internal/validation"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator drops cached identity data for a user.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Service handles user business logic.
type Service struct {
	repo        Repository
	audit       AuditPort
	logger      *slog.Logger
	newID       func() string
	cost        int
	invalidator Invalidator
}

// NewService builds Service instance. audit may be nil.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, newID: uuid.NewString, cost: bcrypt.DefaultCost}
}

// Users returns all users.
func (s *Service) Users(ctx context.Context) ([]entity.User, error) {
	recs, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return entity.AdaptUsers(recs)
}

// User returns one user, or nil when it does not exist.
func (s *Service) User(ctx context.Context, in IDInput) (*entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.lookup(ctx, in.ID)
}

// Me returns the calling user, or nil for anonymous callers.
func (s *Service) Me(ctx context.Context) (*entity.User, error) {
	caller := authz.IdentityFromContext(ctx)
	if caller == nil || caller.UserID == "" {
		return nil, nil
	}
	return s.lookup(ctx, caller.UserID)
}

func (s *Service) lookup(ctx context.Context, id string) (*entity.User, error) {
	rec, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := entity.AdaptUser(rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Identity resolves the authorization identity of a stored user. The role is
// returned as stored; callers normalize it.
func (s *Service) Identity(ctx context.Context, userID string) (authz.Identity, error) {
	rec, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return authz.Identity{}, err
	}
	return authz.Identity{UserID: rec.ID, Email: rec.Email, Role: authz.Role(rec.Role)}, nil
}

func parseRole(raw string) (string, error) {
	role, err := authz.ParseRole(raw)
	if err != nil {
		return "", fmt.Errorf("%w: role must be one of [%s]", shared.ErrValidation, roleList())
	}
	return role.String(), nil
}

func roleList() string {
	names := make([]string, 0, len(authz.Roles()))
	for _, r := range authz.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, " ")
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return string(hashed), nil
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return mutation.Recover(err)
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertUser(ctx, NewUser{
		ID:           id,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.Name,
		Role:         role,
		PasswordHash: hashed,
	})
	return s.settle(ctx, "createUser", "created", id, rec, err)
}

func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	changes := UserChanges{ID: in.ID, Name: in.Name}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		changes.Email = &email
	}
	if in.Password != nil {
		hashed, err := s.hash(*in.Password)
		if err != nil {
			return mutation.Recover(err)
		}
		changes.PasswordHash = &hashed
	}
	rec, err := s.repo.UpdateUser(ctx, changes)
	return s.settle(ctx, "updateUser", "updated", in.ID, rec, err)
}

// UpdateUserRole reassigns the role of a user.
func (s *Service) UpdateUserRole(ctx context.Context, in UpdateUserRoleInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateUser(ctx, UserChanges{ID: in.ID, Role: &role})
	return s.settle(ctx, "updateUserRole", "updated", in.ID, rec, err)
}

func (s *Service) DeleteUser(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.DeleteUser(ctx, in.ID)
	return s.settle(ctx, "deleteUser", "deleted", in.ID, rec, err)
}

// SetInvalidator registers the cache to clear after a user changes.
func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

func (s *Service) settle(ctx context.Context, op, verb, id string, rec record.User, err error) (mutation.Response, error) {
	if err != nil {
		return mutation.Recover(err)
	}
	if s.invalidator != nil && verb != "created" {
		if err := s.invalidator.Invalidate(ctx, id); err != nil {
			s.logger.Warn("identity cache invalidate failed", slog.String("user_id", id), slog.Any("error", err))
		}
	}
	out, err := entity.AdaptUser(rec)
	if err != nil {
		return mutation.Response{}, err
	}
	if s.audit != nil {
		entry := shared.AuditLog{Action: op, Entity: "user", EntityID: id, At: time.Now().UTC()}
		if caller := authz.IdentityFromContext(ctx); caller != nil {
			entry.ActorID = caller.UserID
		}
		if err := s.audit.Record(ctx, entry); err != nil {
			s.logger.Warn("audit record failed", slog.String("action", op), slog.String("entity_id", id), slog.Any("error", err))
		}
	}
	return mutation.Succeeded("user", out, fmt.Sprintf("User %s: %s", verb, id)), nil
}
