package service

import (
	"go.uber.org/zap"

	"postboard/internal/config"
	"postboard/internal/repository"
	"postboard/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Tokens TokenService
}

// NewService wires the services over rep. storage may be nil when attachments
// are disabled.
func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, clock Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := NewTokenService(cfg.JWTSecretKey, clock)

	return &Service{
		User:   NewUserService(rep.User),
		Post:   NewPostService(rep.Post, rep.Image, storage, clock, logger.Named("posts")),
		Auth:   NewAuthService(rep.User, tokens, logger.Named("auth")),
		Tokens: tokens,
	}
}
