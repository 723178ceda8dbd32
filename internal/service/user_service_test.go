package service

import (
	"context"
	"testing"

	"releaf-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users   map[string]*models.User
	taken   map[string]bool
	follows map[string]map[string]bool
	tags    map[string]map[string]bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[string]*models.User),
		taken:   make(map[string]bool),
		follows: make(map[string]map[string]bool),
		tags:    make(map[string]map[string]bool),
	}
}

func (f *fakeUserStore) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) UserStats(_ context.Context, _ string) (int, int64, error) {
	return 0, 0, nil
}

func (f *fakeUserStore) UsernameTaken(_ context.Context, username, _ string) (bool, error) {
	return f.taken[username], nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID string, username, bio, avatarURL *string) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if username != nil {
		user.Username = *username
	}
	if bio != nil {
		user.Bio = bio
	}
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}
	return user, nil
}

func (f *fakeUserStore) FollowUser(_ context.Context, followerID, followingID string) error {
	if f.follows[followerID] == nil {
		f.follows[followerID] = make(map[string]bool)
	}
	if f.follows[followerID][followingID] {
		return ErrAlreadyExists
	}
	f.follows[followerID][followingID] = true
	return nil
}

func (f *fakeUserStore) UnfollowUser(_ context.Context, followerID, followingID string) error {
	if !f.follows[followerID][followingID] {
		return ErrNotFound
	}
	delete(f.follows[followerID], followingID)
	return nil
}

func (f *fakeUserStore) ListFollowers(_ context.Context, _ string, _, _ int) ([]models.UserSummary, error) {
	return nil, nil
}

func (f *fakeUserStore) ListFollowing(_ context.Context, _ string, _, _ int) ([]models.UserSummary, error) {
	return nil, nil
}

func (f *fakeUserStore) FollowTag(_ context.Context, userID, tag string) error {
	if f.tags[userID] == nil {
		f.tags[userID] = make(map[string]bool)
	}
	f.tags[userID][tag] = true
	return nil
}

func (f *fakeUserStore) UnfollowTag(_ context.Context, userID, tag string) error {
	if !f.tags[userID][tag] {
		return ErrNotFound
	}
	delete(f.tags[userID], tag)
	return nil
}

func (f *fakeUserStore) ListFollowedTags(_ context.Context, userID string) ([]string, error) {
	var out []string
	for tag := range f.tags[userID] {
		out = append(out, tag)
	}
	return out, nil
}

func (f *fakeUserStore) ListUserPosts(_ context.Context, _ string, _, _ int) ([]models.Post, error) {
	return nil, nil
}

func TestFollowUserRejectsSelfFollow(t *testing.T) {
	fs := newFakeUserStore()
	fs.users["u1"] = &models.User{ID: "u1"}
	svc := NewUserService(fs)

	err := svc.FollowUser(context.Background(), "u1", "u1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFollowUserRequiresTarget(t *testing.T) {
	fs := newFakeUserStore()
	svc := NewUserService(fs)

	err := svc.FollowUser(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowUserDuplicate(t *testing.T) {
	fs := newFakeUserStore()
	fs.users["u2"] = &models.User{ID: "u2"}
	svc := NewUserService(fs)

	require.NoError(t, svc.FollowUser(context.Background(), "u1", "u2"))
	err := svc.FollowUser(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateProfileOwnAccountOnly(t *testing.T) {
	fs := newFakeUserStore()
	fs.users["u1"] = &models.User{ID: "u1", Username: "alice42"}
	svc := NewUserService(fs)

	name := "newname1"
	_, err := svc.UpdateProfile(context.Background(), "u2", "u1", UpdateProfileInput{Username: &name})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProfileValidation(t *testing.T) {
	fs := newFakeUserStore()
	fs.users["u1"] = &models.User{ID: "u1", Username: "alice42"}
	fs.taken["bobby99"] = true
	svc := NewUserService(fs)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "u1", "u1", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrValidation)

	bad := "no spaces allowed"
	_, err = svc.UpdateProfile(ctx, "u1", "u1", UpdateProfileInput{Username: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	taken := "bobby99"
	_, err = svc.UpdateProfile(ctx, "u1", "u1", UpdateProfileInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	badURL := "://nope"
	_, err = svc.UpdateProfile(ctx, "u1", "u1", UpdateProfileInput{AvatarURL: &badURL})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfileApplies(t *testing.T) {
	fs := newFakeUserStore()
	fs.users["u1"] = &models.User{ID: "u1", Username: "alice42"}
	svc := NewUserService(fs)

	name := "alice43"
	bio := "tree planter"
	user, err := svc.UpdateProfile(context.Background(), "u1", "u1", UpdateProfileInput{Username: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "alice43", user.Username)
	require.NotNil(t, user.Bio)
	assert.Equal(t, "tree planter", *user.Bio)
}

func TestFollowTagValidation(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	ctx := context.Background()

	assert.ErrorIs(t, svc.FollowTag(ctx, "u1", ""), ErrValidation)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, svc.FollowTag(ctx, "u1", string(long)), ErrValidation)

	assert.NoError(t, svc.FollowTag(ctx, "u1", "cleanup"))
}
