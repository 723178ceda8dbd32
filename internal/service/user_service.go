package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"go.uber.org/zap"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,30}$`)

// UserStore is the persistence contract used by UserService
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UserStats(ctx context.Context, userID string) (int, int64, error)
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, username, bio, avatarURL *string) (*models.User, error)
	FollowUser(ctx context.Context, followerID, followingID string) error
	UnfollowUser(ctx context.Context, followerID, followingID string) error
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error)
	FollowTag(ctx context.Context, userID, tag string) error
	UnfollowTag(ctx context.Context, userID, tag string) error
	ListFollowedTags(ctx context.Context, userID string) ([]string, error)
	ListUserPosts(ctx context.Context, userID string, limit, offset int) ([]models.Post, error)
}

// UserService handles profiles and the follow graph
type UserService struct {
	store  UserStore
	logger *zap.Logger
}

// NewUserService creates a user service
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, logger: util.GetLogger()}
}

// ProfileStats aggregates a user's published activity
type ProfileStats struct {
	PostsCount        int   `json:"posts_count"`
	TotalPointsEarned int64 `json:"total_points_earned"`
}

// Profile is the public profile view
type Profile struct {
	models.User
	Stats ProfileStats `json:"stats"`
}

// GetProfile returns a user's profile with activity stats
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	postCount, totalPoints, err := s.store.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User: *user,
		Stats: ProfileStats{
			PostsCount:        postCount,
			TotalPointsEarned: totalPoints,
		},
	}, nil
}

// UpdateProfileInput carries the optional profile fields
type UpdateProfileInput struct {
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile validates and applies profile changes for the caller's own
// account.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, userID string, input UpdateProfileInput) (*models.User, error) {
	if callerID != userID {
		return nil, fmt.Errorf("%w: can only update your own profile", ErrForbidden)
	}
	if input.Username == nil && input.Bio == nil && input.AvatarURL == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if input.Username != nil {
		if !usernamePattern.MatchString(*input.Username) {
			return nil, fmt.Errorf("%w: username must be 3-30 alphanumeric characters", ErrValidation)
		}
		taken, err := s.store.UsernameTaken(ctx, *input.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	if input.Bio != nil && len(*input.Bio) > 500 {
		return nil, fmt.Errorf("%w: bio must be at most 500 characters", ErrValidation)
	}
	if input.AvatarURL != nil && *input.AvatarURL != "" {
		if _, err := url.ParseRequestURI(*input.AvatarURL); err != nil {
			return nil, fmt.Errorf("%w: avatar_url must be a valid URL", ErrValidation)
		}
	}
	return s.store.UpdateProfile(ctx, userID, input.Username, input.Bio, input.AvatarURL)
}

// FollowUser adds a follow edge after existence and self-follow checks
func (s *UserService) FollowUser(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	if _, err := s.store.GetUserByID(ctx, followingID); err != nil {
		return err
	}
	return s.store.FollowUser(ctx, followerID, followingID)
}

// UnfollowUser removes a follow edge
func (s *UserService) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	return s.store.UnfollowUser(ctx, followerID, followingID)
}

// Followers lists the users following userID
func (s *UserService) Followers(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error) {
	limit, offset = clampPage(limit, offset)
	return s.store.ListFollowers(ctx, userID, limit, offset)
}

// Following lists the users userID follows
func (s *UserService) Following(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error) {
	limit, offset = clampPage(limit, offset)
	return s.store.ListFollowing(ctx, userID, limit, offset)
}

// FollowTag subscribes the user to a tag feed
func (s *UserService) FollowTag(ctx context.Context, userID, tag string) error {
	if tag == "" || len(tag) > 50 {
		return fmt.Errorf("%w: invalid tag", ErrValidation)
	}
	return s.store.FollowTag(ctx, userID, tag)
}

// UnfollowTag removes a tag subscription
func (s *UserService) UnfollowTag(ctx context.Context, userID, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: invalid tag", ErrValidation)
	}
	return s.store.UnfollowTag(ctx, userID, tag)
}

// FollowedTags lists the tags the user follows
func (s *UserService) FollowedTags(ctx context.Context, userID string) ([]string, error) {
	return s.store.ListFollowedTags(ctx, userID)
}

// UserPosts lists a user's published posts
func (s *UserService) UserPosts(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.store.ListUserPosts(ctx, userID, limit, offset)
}
