package service

import (
	"context"
	"testing"
	"time"

	"releaf-service/internal/auth"
	"releaf-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthStore struct {
	usersByID    map[string]*models.User
	usersByEmail map[string]*models.User
	tokens       map[string][]models.RefreshToken
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		tokens:       make(map[string][]models.RefreshToken),
	}
}

func (f *fakeAuthStore) CreateUser(_ context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	f.usersByID[user.ID] = user
	f.usersByEmail[user.Email] = user
	return nil
}

func (f *fakeAuthStore) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *fakeAuthStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *fakeAuthStore) UserExists(_ context.Context, email, _ string) (bool, error) {
	_, ok := f.usersByEmail[email]
	return ok, nil
}

func (f *fakeAuthStore) SaveRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.tokens[userID] = append(f.tokens[userID], models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	})
	return nil
}

func (f *fakeAuthStore) ListRefreshTokens(_ context.Context, userID string) ([]models.RefreshToken, error) {
	return f.tokens[userID], nil
}

func newAuthFixture() (*AuthService, *fakeAuthStore) {
	fs := newFakeAuthStore()
	tokens := auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	return NewAuthService(fs, tokens), fs
}

func TestRegisterAndLogin(t *testing.T) {
	svc, fs := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "alice42",
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	// New accounts start with nothing to spend.
	assert.Equal(t, int64(0), result.User.CarbonCredits)
	require.Len(t, fs.tokens[result.User.ID], 1)
	// Only the bcrypt hash of the refresh token is stored.
	assert.NotEqual(t, result.RefreshToken, fs.tokens[result.User.ID][0].TokenHash)

	login, err := svc.Login(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice42", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice43", Email: "alice@example.com", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@b.co", Password: "Sup3rSecret"}},
		{"non alphanumeric username", RegisterInput{Username: "alice-42", Email: "a@b.co", Password: "Sup3rSecret"}},
		{"bad email", RegisterInput{Username: "alice42", Email: "not-an-email", Password: "Sup3rSecret"}},
		{"short password", RegisterInput{Username: "alice42", Email: "a@b.co", Password: "Ab1"}},
		{"no uppercase", RegisterInput{Username: "alice42", Email: "a@b.co", Password: "sup3rsecret"}},
		{"no digit", RegisterInput{Username: "alice42", Email: "a@b.co", Password: "SuperSecret"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice42", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "WrongPass1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice42", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice42", Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	// Signed with the right secret but never persisted for this user.
	other := auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	pair, err := other.GenerateTokenPair("someone-else", "x@y.co")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
