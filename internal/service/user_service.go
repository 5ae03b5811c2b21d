package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService coordinates account registration and self-service updates.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	BcryptCost int
}

// UserUpdateInput describes a partial self-service update.
type UserUpdateInput struct {
	Username *string
	Email    *string
	Password *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// CreateUser registers a new account with a hashed secret.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	details := map[string]any{}
	if strings.TrimSpace(username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(password) == "" {
		details["password"] = "required"
	}
	if email == "" {
		details["email"] = "required"
	} else if !emailPattern.MatchString(email) {
		details["email"] = "invalid format"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user payload", details)
	}

	if err := s.checkUnique(ctx, username, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserCreated, user.ID, events.UserCreatedPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// GetUser loads an account; callers may only read their own record.
func (s *UserService) GetUser(ctx context.Context, callerID, id string) (*domain.User, error) {
	return s.loadSelf(ctx, callerID, id)
}

// UpdateUser applies a partial self-service update.
func (s *UserService) UpdateUser(ctx context.Context, callerID, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.loadSelf(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return nil, apperrors.NewValidationError("invalid user payload", map[string]any{"username": "required"})
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		if !emailPattern.MatchString(*input.Email) {
			return nil, apperrors.NewValidationError("invalid user payload", map[string]any{"email": "invalid format"})
		}
		user.Email = *input.Email
	}
	if err := s.checkUnique(ctx, user.Username, user.Email, user.ID); err != nil {
		return nil, err
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewValidationError("invalid user payload", map[string]any{"password": "required"})
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) loadSelf(ctx context.Context, callerID, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewBadRequest("invalid user id")
	}
	if callerID != id {
		return nil, apperrors.NewForbidden("cannot access another user's account")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, username, email, selfID string) error {
	if existing, err := s.users.GetByUsername(ctx, username); err == nil {
		if existing.ID != selfID {
			return apperrors.NewConflict("username already taken", map[string]any{"username": username})
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.ID != selfID {
			return apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
