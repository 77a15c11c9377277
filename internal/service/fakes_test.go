package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"postboard/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memPostRepo mirrors the SQL repository: Save applies a delta under one
// lock, the same way the UPDATE statement does in PostgreSQL.
type memPostRepo struct {
	mu    sync.Mutex
	clock *fakeClock
	posts map[string]*models.Post
}

func newMemPostRepo(clock *fakeClock) *memPostRepo {
	return &memPostRepo{clock: clock, posts: map[string]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Topics = append([]string(nil), p.Topics...)
	cp.Comments = append(models.Comments{}, p.Comments...)
	return &cp
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	if err := models.Validate(post); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.Likes = 0
	post.Dislikes = 0
	post.Comments = models.Comments{}
	post.CreatedAt = r.clock.Now().UTC()

	r.posts[post.PostID] = clonePost(post)
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, postID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, models.NotFoundf("post %s not found", postID)
	}
	return clonePost(p), nil
}

func (r *memPostRepo) filter(topic string, keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range r.posts {
		for _, t := range p.Topics {
			if t == topic && keep(p) {
				out = append(out, *clonePost(p))
				break
			}
		}
	}
	return out
}

func (r *memPostRepo) GetByTopic(_ context.Context, topic string) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.filter(topic, func(*models.Post) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memPostRepo) GetExpiredByTopic(_ context.Context, topic string, asOf time.Time) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.filter(topic, func(p *models.Post) bool { return p.Expiration.Before(asOf) }), nil
}

func (r *memPostRepo) GetMostActiveByTopic(_ context.Context, topic string, asOf time.Time) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.filter(topic, func(p *models.Post) bool { return p.Expiration.After(asOf) })
	if len(active) == 0 {
		return nil, models.NotFoundf("no active posts found for topic %q", topic)
	}

	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		if a.Dislikes != b.Dislikes {
			return a.Dislikes > b.Dislikes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.PostID < b.PostID
	})
	return &active[0], nil
}

func (r *memPostRepo) Save(_ context.Context, postID string, delta models.PostDelta) (*models.Post, error) {
	if delta.Likes < 0 || delta.Dislikes < 0 {
		return nil, models.Validationf("counters can only grow")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, models.NotFoundf("post %s not found", postID)
	}
	p.Likes += delta.Likes
	p.Dislikes += delta.Dislikes
	p.Comments = append(p.Comments, delta.Comments...)
	return clonePost(p), nil
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, image *models.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageRepository) GetByID(ctx context.Context, imageID string) (*models.Image, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) GetByPostID(ctx context.Context, postID string) ([]models.Image, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Image), args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, imageID string) error {
	args := m.Called(ctx, imageID)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadImage(ctx context.Context, postID string, fileName string, file io.Reader, size int64) (string, string, error) {
	args := m.Called(ctx, postID, fileName, file, size)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStorage) DeleteImage(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}
