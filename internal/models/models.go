package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type User struct {
	UserID       string    `json:"userId" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type PostState string

const (
	PostStateActive  PostState = "active"
	PostStateExpired PostState = "expired"
)

type Post struct {
	PostID     string         `json:"postId" db:"post_id"`
	OwnerID    string         `json:"ownerId" db:"owner_id" validate:"required"`
	Title      string         `json:"title" db:"title" validate:"required,notblank"`
	Topics     pq.StringArray `json:"topics" db:"topics" validate:"required,min=1,dive,required"`
	Body       string         `json:"body" db:"body" validate:"required,notblank"`
	Expiration time.Time      `json:"expiration" db:"expiration" validate:"required"`
	Likes      int64          `json:"likes" db:"likes"`
	Dislikes   int64          `json:"dislikes" db:"dislikes"`
	Comments   Comments       `json:"comments" db:"comments"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	Images     []Image        `json:"images,omitempty" db:"-"`
}

// IsActive reports whether the post accepts dislikes at the given instant.
func (p *Post) IsActive(now time.Time) bool {
	return now.Before(p.Expiration)
}

func (p *Post) State(now time.Time) PostState {
	if p.IsActive(now) {
		return PostStateActive
	}
	return PostStateExpired
}

type Comment struct {
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comments is stored as a JSONB array on the post row.
type Comments []Comment

func (c Comments) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Comment(c))
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}
	// lib/pq sends []byte as bytea; a string keeps the ::jsonb cast happy.
	return string(b), nil
}

func (c *Comments) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Comments{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported comments source %T", src)
	}

	out := Comments{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal comments: %w", err)
	}
	*c = out
	return nil
}

// PostDelta is an additive change applied to a post in a single statement.
type PostDelta struct {
	Likes    int64
	Dislikes int64
	Comments []Comment
}

func (d PostDelta) IsZero() bool {
	return d.Likes == 0 && d.Dislikes == 0 && len(d.Comments) == 0
}

type Image struct {
	ImageID    string    `json:"imageId" db:"image_id"`
	PostID     string    `json:"postId" db:"post_id"`
	ObjectName string    `json:"-" db:"object_name"`
	ImageURL   string    `json:"imageUrl" db:"image_url"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type CreatePostInput struct {
	Title      string    `json:"title" validate:"required,notblank"`
	Topics     []string  `json:"topics" validate:"required,min=1,dive,required"`
	Body       string    `json:"body" validate:"required,notblank"`
	Expiration time.Time `json:"expiration" validate:"required"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required"`
}
