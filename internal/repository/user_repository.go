package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/models"
)

const pqUniqueViolation = "23505"

type userRepository struct {
	db   *sqlx.DB
	cost int
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db, cost: bcrypt.DefaultCost}
}

func (r *userRepository) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.WrapError(models.KindValidation, "password is too long", err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserID:       uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO users (user_id, username, password_hash, created_at)
		VALUES (:user_id, :username, :password_hash, :created_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.WrapError(models.KindDuplicateUsername, fmt.Sprintf("username %q is already taken", username), err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT user_id, username, password_hash, created_at FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, models.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT user_id, username, password_hash, created_at FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundf("user %q not found", username)
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

// VerifyPassword reports unknown users and wrong passwords identically.
func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAuthenticationFailed
		}
		return nil, err
	}

	// checking that the password hash is the same
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrAuthenticationFailed
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
