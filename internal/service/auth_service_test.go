package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/borctakip/debt-tracker/internal/config"
	"github.com/borctakip/debt-tracker/internal/domain"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

func newAuthService() (*AuthService, *MockUserRepository) {
	userRepo := &MockUserRepository{}
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = 30 * time.Minute
	return NewAuthService(userRepo, cfg), userRepo
}

func TestRegister_Success(t *testing.T) {
	service, userRepo := newAuthService()

	userRepo.On("GetByEmail", mock.Anything, "ali@example.com").Return(nil, sql.ErrNoRows)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
		return user.Email == "ali@example.com" && user.HashedPassword != "sifre12345"
	})).Return(nil)

	token, err := service.Register(context.Background(), &domain.RegisterRequest{
		Email:    "ali@example.com",
		Password: "sifre12345",
		FullName: "Ali Yılmaz",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	userRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, userRepo := newAuthService()

	existing := &domain.User{ID: uuid.New(), Email: "ali@example.com"}
	userRepo.On("GetByEmail", mock.Anything, "ali@example.com").Return(existing, nil)

	_, err := service.Register(context.Background(), &domain.RegisterRequest{
		Email:    "ali@example.com",
		Password: "sifre12345",
		FullName: "Ali Yılmaz",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrEmailAlreadyExists))
	userRepo.AssertNotCalled(t, "Create")
}

func TestLogin_Success(t *testing.T) {
	service, userRepo := newAuthService()

	hashed, err := bcrypt.GenerateFromPassword([]byte("sifre12345"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "ali@example.com",
		HashedPassword: string(hashed),
	}
	userRepo.On("GetByEmail", mock.Anything, "ali@example.com").Return(user, nil)

	token, err := service.Login(context.Background(), &domain.LoginRequest{
		Email:    "ali@example.com",
		Password: "sifre12345",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, userRepo := newAuthService()

	hashed, err := bcrypt.GenerateFromPassword([]byte("sifre12345"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "ali@example.com",
		HashedPassword: string(hashed),
	}
	userRepo.On("GetByEmail", mock.Anything, "ali@example.com").Return(user, nil)

	_, err = service.Login(context.Background(), &domain.LoginRequest{
		Email:    "ali@example.com",
		Password: "yanlis-sifre",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidCredentials))
}

func TestLogin_UnknownEmail(t *testing.T) {
	service, userRepo := newAuthService()

	userRepo.On("GetByEmail", mock.Anything, "yok@example.com").Return(nil, sql.ErrNoRows)

	_, err := service.Login(context.Background(), &domain.LoginRequest{
		Email:    "yok@example.com",
		Password: "sifre12345",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidCredentials))
}
