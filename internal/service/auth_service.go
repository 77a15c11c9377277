package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenService, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", time.Time{}, models.Validationf("username and password are required")
	}

	user, err := s.userRepo.VerifyPassword(ctx, username, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	return user, token, expiresAt, nil
}
