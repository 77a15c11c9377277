package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"postboard/internal/models"
)

// UserRepository is the credential store: it owns password hashing and
// username lookup.
type UserRepository interface {
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetByTopic(ctx context.Context, topic string) ([]models.Post, error)
	GetExpiredByTopic(ctx context.Context, topic string, asOf time.Time) ([]models.Post, error)
	GetMostActiveByTopic(ctx context.Context, topic string, asOf time.Time) (*models.Post, error)
	// Save applies delta atomically and returns the post as stored afterwards.
	Save(ctx context.Context, postID string, delta models.PostDelta) (*models.Post, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, imageID string) (*models.Image, error)
	GetByPostID(ctx context.Context, postID string) ([]models.Image, error)
	Delete(ctx context.Context, imageID string) error
}

type Repository struct {
	User  UserRepository
	Post  PostRepository
	Image ImageRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:  NewUserRepository(db),
		Post:  NewPostRepository(db),
		Image: NewImageRepository(db),
	}
}
