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

	"postboard/internal/models"
)

const (
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"

	postColumns = `post_id, owner_id, title, topics, body, expiration, likes, dislikes, comments, created_at`
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if err := models.Validate(post); err != nil {
		return err
	}

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.Likes = 0
	post.Dislikes = 0
	post.Comments = models.Comments{}
	post.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO posts
		(post_id, owner_id, title, topics, body, expiration, likes, dislikes, comments, created_at)
		VALUES
		(:post_id, :owner_id, :title, :topics, :body, :expiration, :likes, :dislikes, CAST(:comments AS jsonb), :created_at)
	`

	_, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return models.WrapError(models.KindNotFound, fmt.Sprintf("owner %s not found", post.OwnerID), err)
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, models.NotFoundf("post %s not found", postID)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByTopic returns every post tagged with topic, active or not, newest first.
func (r *PostRepositoryImpl) GetByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE topics @> ARRAY[$1]::text[]
		ORDER BY created_at DESC, post_id
	`

	posts := []models.Post{}
	if err := r.DB.SelectContext(ctx, &posts, query, topic); err != nil {
		return nil, fmt.Errorf("get posts by topic: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) GetExpiredByTopic(ctx context.Context, topic string, asOf time.Time) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE topics @> ARRAY[$1]::text[] AND expiration < $2
		ORDER BY expiration DESC, post_id
	`

	posts := []models.Post{}
	if err := r.DB.SelectContext(ctx, &posts, query, topic, asOf); err != nil {
		return nil, fmt.Errorf("get expired posts by topic: %w", err)
	}

	return posts, nil
}

// GetMostActiveByTopic ranks active posts by likes, then dislikes. Remaining
// ties go to the oldest post, then the lowest id.
func (r *PostRepositoryImpl) GetMostActiveByTopic(ctx context.Context, topic string, asOf time.Time) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE topics @> ARRAY[$1]::text[] AND expiration > $2
		ORDER BY likes DESC, dislikes DESC, created_at ASC, post_id ASC
		LIMIT 1
	`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, topic, asOf)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFoundf("no active posts found for topic %q", topic)
		}
		return nil, fmt.Errorf("get most active post: %w", err)
	}

	return &post, nil
}

// Save increments counters and appends comments in one UPDATE, so concurrent
// callers never overwrite each other.
func (r *PostRepositoryImpl) Save(ctx context.Context, postID string, delta models.PostDelta) (*models.Post, error) {
	if delta.Likes < 0 || delta.Dislikes < 0 {
		return nil, models.Validationf("counters can only grow")
	}

	query := `
		UPDATE posts SET
			likes = likes + $2,
			dislikes = dislikes + $3,
			comments = comments || CAST($4 AS jsonb)
		WHERE post_id = $1
		RETURNING ` + postColumns

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID, delta.Likes, delta.Dislikes, models.Comments(delta.Comments))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, models.NotFoundf("post %s not found", postID)
		}
		return nil, fmt.Errorf("save post: %w", err)
	}

	return &post, nil
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidText
}
