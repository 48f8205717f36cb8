package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/borctakip/debt-tracker/internal/auth"
	"github.com/borctakip/debt-tracker/internal/config"
	"github.com/borctakip/debt-tracker/internal/domain"
	"github.com/borctakip/debt-tracker/internal/repository"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

type AuthService struct {
	userRepo repository.UserRepository
	config   *config.Config
}

func NewAuthService(userRepo repository.UserRepository, config *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		config:   config,
	}
}

// Register creates a new account and returns a bearer token for it.
func (s *AuthService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.TokenResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err == nil && existing != nil {
		return nil, customError.WrapEmailAlreadyExists(request.Email)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uuid.New(),
		Email:          request.Email,
		HashedPassword: string(hashed),
		FullName:       request.FullName,
		CreatedAt:      time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidCredentials()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(request.Password)); err != nil {
		return nil, customError.WrapInvalidCredentials()
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.User) (*domain.TokenResponse, error) {
	token, err := auth.GenerateToken(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL, user)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}
