package service

import (
	"context"
	"fmt"
	"time"

	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostFilter narrows discover-feed queries
type PostFilter struct {
	Tags     []string
	Username string
	Limit    int
	Offset   int
}

// PostStore is the persistence contract used by PostService
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	PublishPost(ctx context.Context, postID string, points int64) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	ListPublishedPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	HomeFeed(ctx context.Context, userID string, limit, offset int) ([]models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	CreditBalance(ctx context.Context, userID string, amount int64) error
	DeductBalance(ctx context.Context, userID string, amount int64) error
}

// PostScorer values a post, falling back internally when the external
// collaborator is unavailable.
type PostScorer interface {
	ScorePost(ctx context.Context, post *models.Post) ScoreResult
}

// PostPublisher emits post lifecycle events
type PostPublisher interface {
	PublishPostPublished(ctx context.Context, event *models.PostPublishedEvent) error
}

// PostService handles post creation, feeds, and deletion
type PostService struct {
	store     PostStore
	scorer    PostScorer
	publisher PostPublisher
	logger    *zap.Logger
}

// NewPostService creates a post service. publisher may be nil.
func NewPostService(store PostStore, scorer PostScorer, publisher PostPublisher) *PostService {
	return &PostService{
		store:     store,
		scorer:    scorer,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreatePostInput is the validated payload for a new post
type CreatePostInput struct {
	UserID      string
	Description string
	Tags        []string
	ImageURL    string
}

// CreatePost inserts the post, obtains its point value from the scoring
// collaborator (or the fallback), publishes it, and credits the author.
// The scoring call happens outside any transaction boundary.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, bool, error) {
	ctx, span := util.StartSpan(ctx, "PostService.CreatePost")
	defer span.End()

	if err := validatePostInput(input); err != nil {
		return nil, false, err
	}

	post := &models.Post{
		UserID:      input.UserID,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		Tags:        input.Tags,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, false, fmt.Errorf("failed to create post: %w", err)
	}

	score := s.scorer.ScorePost(ctx, post)

	if err := s.store.PublishPost(ctx, post.ID, score.Points); err != nil {
		return nil, false, fmt.Errorf("failed to publish post: %w", err)
	}
	if err := s.store.CreditBalance(ctx, input.UserID, score.Points); err != nil {
		return nil, false, fmt.Errorf("failed to credit author: %w", err)
	}

	post.Points = score.Points
	post.Status = models.PostStatusPublished

	util.PostsCreatedTotal.Inc()
	util.PointsCreditedTotal.Add(float64(score.Points))
	s.logger.Info("Post published",
		zap.String("post_id", post.ID),
		zap.Int64("points", score.Points),
		zap.Bool("fallback", score.Fallback))

	if s.publisher != nil {
		event := &models.PostPublishedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePostPublished,
				Timestamp: time.Now(),
			},
			PostID:   post.ID,
			UserID:   post.UserID,
			Points:   score.Points,
			Tags:     post.Tags,
			Fallback: score.Fallback,
		}
		if err := s.publisher.PublishPostPublished(ctx, event); err != nil {
			s.logger.Error("Failed to publish PostPublished event", zap.Error(err))
		}
	}

	// Re-read for the joined author columns; fall back to the bare post.
	if full, err := s.store.GetPost(ctx, post.ID); err == nil {
		return full, score.Fallback, nil
	}
	return post, score.Fallback, nil
}

// GetPost returns a post with its author columns
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.store.GetPost(ctx, postID)
}

// ListPosts returns published posts for the discover feed
func (s *PostService) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	return s.store.ListPublishedPosts(ctx, filter)
}

// HomeFeed returns posts from followed users and followed tags
func (s *PostService) HomeFeed(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.store.HomeFeed(ctx, userID, limit, offset)
}

// DeletePost removes the caller's own post and claws back its points,
// flooring the balance at zero.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return fmt.Errorf("%w: not the post author", ErrForbidden)
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if post.Status == models.PostStatusPublished && post.Points > 0 {
		if err := s.store.DeductBalance(ctx, userID, post.Points); err != nil {
			s.logger.Error("Failed to claw back points for deleted post",
				zap.String("post_id", postID),
				zap.Error(err))
		}
	}

	util.PostsDeletedTotal.Inc()
	return nil
}

func validatePostInput(input CreatePostInput) error {
	if len(input.Description) < 10 || len(input.Description) > 1000 {
		return fmt.Errorf("%w: description must be 10-1000 characters", ErrValidation)
	}
	if len(input.Tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", ErrValidation)
	}
	for _, tag := range input.Tags {
		if len(tag) < 1 || len(tag) > 50 {
			return fmt.Errorf("%w: tags must be 1-50 characters", ErrValidation)
		}
	}
	if input.ImageURL == "" {
		return fmt.Errorf("%w: image is required", ErrValidation)
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
