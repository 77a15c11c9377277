package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"postboard/internal/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", time.Time{}, args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userID string) (string, time.Time, error) {
	args := m.Called(userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) Resolve(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) post(args mock.Arguments) (*models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) posts(args mock.Arguments) ([]models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, callerID string, input models.CreatePostInput) (*models.Post, error) {
	return m.post(m.Called(ctx, callerID, input))
}

func (m *MockPostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID))
}

func (m *MockPostService) LikePost(ctx context.Context, callerID, postID string) (*models.Post, error) {
	return m.post(m.Called(ctx, callerID, postID))
}

func (m *MockPostService) DislikePost(ctx context.Context, callerID, postID string) (*models.Post, error) {
	return m.post(m.Called(ctx, callerID, postID))
}

func (m *MockPostService) CommentOn(ctx context.Context, callerID, postID, text string) (*models.Post, error) {
	return m.post(m.Called(ctx, callerID, postID, text))
}

func (m *MockPostService) BrowseByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	return m.posts(m.Called(ctx, topic))
}

func (m *MockPostService) ListExpiredByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	return m.posts(m.Called(ctx, topic))
}

func (m *MockPostService) MostActiveByTopic(ctx context.Context, topic string) (*models.Post, error) {
	return m.post(m.Called(ctx, topic))
}

func (m *MockPostService) AddImage(ctx context.Context, callerID, postID, fileName string, file io.Reader, size int64) (*models.Image, error) {
	args := m.Called(ctx, callerID, postID, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockPostService) DeleteImage(ctx context.Context, callerID, postID, imageID string) error {
	args := m.Called(ctx, callerID, postID, imageID)
	return args.Error(0)
}

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck(context.Context) error {
	return s.err
}
