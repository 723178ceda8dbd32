package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"releaf-service/internal/auth"
	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"go.uber.org/zap"
)

var (
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	passwordUpper    = regexp.MustCompile(`[A-Z]`)
	passwordLower    = regexp.MustCompile(`[a-z]`)
	passwordDigit    = regexp.MustCompile(`\d`)
	maxBioLength     = 500
	minPasswordChars = 8
)

// AuthStore is the persistence contract used by AuthService
type AuthStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
	SaveRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ListRefreshTokens(ctx context.Context, userID string) ([]models.RefreshToken, error)
}

// AuthService handles registration, login, and token refresh
type AuthService struct {
	store  AuthStore
	tokens *auth.Manager
	logger *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(store AuthStore, tokens *auth.Manager) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: util.GetLogger()}
}

// RegisterInput is the signup payload
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Bio      string `json:"bio"`
}

// AuthResult bundles the user with a fresh token pair
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Register creates an account with a zero starting balance and issues tokens
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, input.Email, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if input.Bio != "" {
		user.Bio = &input.Bio
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues tokens
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Same error whether the account or the password is wrong.
		return nil, ErrUnauthorized
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return s.issueTokens(ctx, user)
}

// Refresh validates a refresh token against its stored hash and issues a
// new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	stored, err := s.store.ListRefreshTokens(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	known := false
	for _, token := range stored {
		if auth.CheckToken(token.TokenHash, refreshToken) {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	tokenHash, err := auth.HashToken(pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}
	expiresAt := time.Now().Add(s.tokens.RefreshTTL())
	if err := s.store.SaveRefreshToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func validateRegisterInput(input RegisterInput) error {
	if !usernamePattern.MatchString(input.Username) {
		return fmt.Errorf("%w: username must be 3-30 alphanumeric characters", ErrValidation)
	}
	if !emailPattern.MatchString(input.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(input.Password) < minPasswordChars ||
		!passwordUpper.MatchString(input.Password) ||
		!passwordLower.MatchString(input.Password) ||
		!passwordDigit.MatchString(input.Password) {
		return fmt.Errorf("%w: password must be at least 8 characters with upper, lower, and digit", ErrValidation)
	}
	if len(input.Bio) > maxBioLength {
		return fmt.Errorf("%w: bio must be at most 500 characters", ErrValidation)
	}
	return nil
}
