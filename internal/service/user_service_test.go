package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

type mockUserRepo struct {
	createFunc        func(ctx context.Context, user *domain.User) error
	updateFunc        func(ctx context.Context, user *domain.User) error
	getByIDFunc       func(ctx context.Context, id string) (*domain.User, error)
	getByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	getByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(UserDependencies{UserRepo: repo, BcryptCost: 4})
}

func TestCreateUserMissingFields(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.CreateUser(context.Background(), "", "", "")

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "username")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
}

func TestCreateUserInvalidEmail(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.CreateUser(context.Background(), "ada", "not-an-email", "s3cret")

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "email")
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{
		getByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: uuid.NewString(), Username: username}, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.CreateUser(context.Background(), "ada", "ada@example.com", "s3cret")

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: uuid.NewString(), Email: email}, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.CreateUser(context.Background(), "ada", "ada@example.com", "s3cret")

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestCreateUserHashesPassword(t *testing.T) {
	var stored *domain.User
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *domain.User) error {
			user.ID = uuid.NewString()
			stored = user
			return nil
		},
	}
	svc := newUserService(repo)

	user, err := svc.CreateUser(context.Background(), "ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "s3cret"))
	assert.Equal(t, stored.ID, user.ID)
}

func TestGetUserForeignAccount(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.GetUser(context.Background(), uuid.NewString(), uuid.NewString())

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
}

func TestGetUserMalformedID(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	_, err := svc.GetUser(context.Background(), "42", "42")

	domainErr := requireDomainError(t, err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	userID := uuid.NewString()
	original, err := auth.HashPassword("old-secret", 4)
	require.NoError(t, err)

	repo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: userID, Username: "ada", Email: "ada@example.com", PasswordHash: original}, nil
		},
		updateFunc: func(ctx context.Context, user *domain.User) error {
			return nil
		},
	}
	svc := newUserService(repo)

	password := "new-secret"
	user, err := svc.UpdateUser(context.Background(), userID, userID, UserUpdateInput{Password: &password})
	require.NoError(t, err)

	assert.NotEqual(t, original, user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "new-secret"))
}
