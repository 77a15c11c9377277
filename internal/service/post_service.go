package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/storage"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PostService is the post lifecycle engine. A post is active while the clock
// reads before its expiration; the transition to expired is evaluated on
// every call and never reverses.
type PostService interface {
	CreatePost(ctx context.Context, callerID string, input models.CreatePostInput) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	LikePost(ctx context.Context, callerID, postID string) (*models.Post, error)
	DislikePost(ctx context.Context, callerID, postID string) (*models.Post, error)
	CommentOn(ctx context.Context, callerID, postID, text string) (*models.Post, error)
	BrowseByTopic(ctx context.Context, topic string) ([]models.Post, error)
	ListExpiredByTopic(ctx context.Context, topic string) ([]models.Post, error)
	MostActiveByTopic(ctx context.Context, topic string) (*models.Post, error)
	AddImage(ctx context.Context, callerID, postID, fileName string, file io.Reader, size int64) (*models.Image, error)
	DeleteImage(ctx context.Context, callerID, postID, imageID string) error
}

type postService struct {
	postRepo  repository.PostRepository
	imageRepo repository.ImageRepository
	storage   storage.Storage
	clock     Clock
	logger    *zap.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	imageRepo repository.ImageRepository,
	storage storage.Storage,
	clock Clock,
	logger *zap.Logger,
) PostService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postService{
		postRepo:  postRepo,
		imageRepo: imageRepo,
		storage:   storage,
		clock:     clock,
		logger:    logger,
	}
}

func (p *postService) CreatePost(ctx context.Context, callerID string, input models.CreatePostInput) (*models.Post, error) {
	input.Topics = models.NormalizeTopics(input.Topics)

	if err := models.Validate(input); err != nil {
		return nil, err
	}

	post := &models.Post{
		OwnerID:    callerID,
		Title:      input.Title,
		Topics:     input.Topics,
		Body:       input.Body,
		// postgres keeps microseconds
		Expiration: input.Expiration.UTC().Truncate(time.Microsecond),
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, p.logger).Info("post created",
		zap.String("post_id", post.PostID),
		zap.String("owner_id", post.OwnerID),
		zap.Strings("topics", post.Topics),
		zap.Time("expiration", post.Expiration),
	)

	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if p.imageRepo != nil {
		images, err := p.imageRepo.GetByPostID(ctx, post.PostID)
		if err != nil {
			return nil, err
		}
		post.Images = images
	}

	return post, nil
}

// LikePost is rejected for the owner whether or not the post has expired.
// Expiration does not gate likes.
func (p *postService) LikePost(ctx context.Context, callerID, postID string) (*models.Post, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.OwnerID == callerID {
		return nil, models.ErrSelfInteractionForbidden
	}

	return p.apply(ctx, "like", post.PostID, models.PostDelta{Likes: 1})
}

// DislikePost is gated by expiration only; owners may dislike their own posts.
func (p *postService) DislikePost(ctx context.Context, callerID, postID string) (*models.Post, error) {
	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.IsActive(p.clock.Now()) {
		return nil, models.ErrPostExpired
	}

	return p.apply(ctx, "dislike", post.PostID, models.PostDelta{Dislikes: 1})
}

// CommentOn is open to every caller on active and expired posts alike.
func (p *postService) CommentOn(ctx context.Context, callerID, postID, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.Validationf("comment text is required")
	}

	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		AuthorID:  callerID,
		Text:      text,
		CreatedAt: p.clock.Now().UTC(),
	}

	return p.apply(ctx, "comment", post.PostID, models.PostDelta{Comments: []models.Comment{comment}})
}

func (p *postService) BrowseByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	topic, err := cleanTopic(topic)
	if err != nil {
		return nil, err
	}
	return p.postRepo.GetByTopic(ctx, topic)
}

func (p *postService) ListExpiredByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	topic, err := cleanTopic(topic)
	if err != nil {
		return nil, err
	}
	return p.postRepo.GetExpiredByTopic(ctx, topic, p.clock.Now())
}

func (p *postService) MostActiveByTopic(ctx context.Context, topic string) (*models.Post, error) {
	topic, err := cleanTopic(topic)
	if err != nil {
		return nil, err
	}
	return p.postRepo.GetMostActiveByTopic(ctx, topic, p.clock.Now())
}

func (p *postService) AddImage(ctx context.Context, callerID, postID, fileName string, file io.Reader, size int64) (*models.Image, error) {
	if p.storage == nil || p.imageRepo == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExt[ext] {
		return nil, models.Validationf("unsupported image type %q", ext)
	}

	post, err := p.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != callerID {
		return nil, models.ErrNotPostOwner
	}

	objectName, imageURL, err := p.storage.UploadImage(ctx, post.PostID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	image := &models.Image{
		ImageID:    uuid.New().String(),
		PostID:     post.PostID,
		ObjectName: objectName,
		ImageURL:   imageURL,
		CreatedAt:  p.clock.Now().UTC(),
	}

	if err := p.imageRepo.Create(ctx, image); err != nil {
		if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
			logger.WithRequestID(ctx, p.logger).Warn("orphaned object after failed insert",
				zap.String("object", objectName), zap.Error(delErr))
		}
		return nil, err
	}

	return image, nil
}

func (p *postService) DeleteImage(ctx context.Context, callerID, postID, imageID string) error {
	if p.storage == nil || p.imageRepo == nil {
		return fmt.Errorf("image storage is not configured")
	}

	post, err := p.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != callerID {
		return models.ErrNotPostOwner
	}

	image, err := p.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if image.PostID != post.PostID {
		return models.NotFoundf("image %s not found on post %s", imageID, post.PostID)
	}

	if err := p.imageRepo.Delete(ctx, image.ImageID); err != nil {
		return err
	}

	// the row is gone; a leftover object is only logged
	if err := p.storage.DeleteImage(ctx, image.ObjectName); err != nil {
		logger.WithRequestID(ctx, p.logger).Warn("failed to remove image object",
			zap.String("object", image.ObjectName), zap.Error(err))
	}

	return nil
}

func (p *postService) load(ctx context.Context, postID string) (*models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, models.NotFoundf("post %s not found", postID)
	}
	return p.postRepo.GetByID(ctx, postID)
}

// apply relies on Save being a single atomic update; owner and expiration
// never change, so checks made on the loaded copy still hold.
func (p *postService) apply(ctx context.Context, action, postID string, delta models.PostDelta) (*models.Post, error) {
	post, err := p.postRepo.Save(ctx, postID, delta)
	if err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, p.logger).Debug("post updated",
		zap.String("action", action),
		zap.String("post_id", postID),
		zap.Int64("likes", post.Likes),
		zap.Int64("dislikes", post.Dislikes),
		zap.Int("comments", len(post.Comments)),
	)

	return post, nil
}

func cleanTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", models.Validationf("topic is required")
	}
	return topic, nil
}
