package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"releaf-service/internal/models"
	"releaf-service/internal/service"
)

// CreateUser inserts a user with a zero starting balance
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, bio, carbon_credits)
		 VALUES ($1, $2, $3, $4, 0)
		 RETURNING id, carbon_credits, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.Bio).
		Scan(&user.ID, &user.CarbonCredits, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: email", service.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a user with the given email or username exists
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)", email, username)
	return exists, err
}

// UsernameTaken reports whether another user already holds the username
func (s *Store) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id != $2)", username, excludeUserID)
	return exists, err
}

// UpdateProfile applies the provided optional fields and returns the
// updated row. Parameterized throughout; nil fields are left untouched.
func (s *Store) UpdateProfile(ctx context.Context, userID string, username, bio, avatarURL *string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		`UPDATE users
		 SET username  = COALESCE($1, username),
		     bio        = COALESCE($2, bio),
		     avatar_url = COALESCE($3, avatar_url),
		     updated_at = NOW()
		 WHERE id = $4
		 RETURNING *`,
		username, bio, avatarURL, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreditBalance adds points to a user's balance
func (s *Store) CreditBalance(ctx context.Context, userID string, amount int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET carbon_credits = carbon_credits + $1, updated_at = NOW() WHERE id = $2",
		amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", service.ErrPrincipalNotFound, userID)
	}
	return nil
}

// DeductBalance removes points from a user's balance, floored at zero.
// Used for post-deletion clawback, never for redemptions.
func (s *Store) DeductBalance(ctx context.Context, userID string, amount int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET carbon_credits = GREATEST(carbon_credits - $1, 0), updated_at = NOW() WHERE id = $2",
		amount, userID)
	return err
}

// GetBalance returns a user's current balance
func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.GetContext(ctx, &balance,
		"SELECT carbon_credits FROM users WHERE id = $1", userID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: user %s", service.ErrPrincipalNotFound, userID)
	}
	return balance, err
}

// SaveRefreshToken stores a hashed refresh token
func (s *Store) SaveRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)",
		userID, tokenHash, expiresAt)
	return err
}

// ListRefreshTokens returns non-expired refresh tokens for a user
func (s *Store) ListRefreshTokens(ctx context.Context, userID string) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := s.db.SelectContext(ctx, &tokens,
		"SELECT * FROM refresh_tokens WHERE user_id = $1 AND expires_at > NOW()", userID)
	return tokens, err
}

// FollowUser creates a follow edge
func (s *Store) FollowUser(ctx context.Context, followerID, followingID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_follows (follower_id, following_id)
		 VALUES ($1, $2)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return service.ErrAlreadyExists
	}
	return nil
}

// UnfollowUser removes a follow edge
func (s *Store) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM user_follows WHERE follower_id = $1 AND following_id = $2",
		followerID, followingID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ListFollowers returns the users following the given user
func (s *Store) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := s.db.SelectContext(ctx, &users,
		`SELECT u.id, u.username, u.avatar_url, u.bio
		 FROM users u
		 JOIN user_follows uf ON u.id = uf.follower_id
		 WHERE uf.following_id = $1
		 ORDER BY uf.created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	return users, err
}

// ListFollowing returns the users the given user follows
func (s *Store) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := s.db.SelectContext(ctx, &users,
		`SELECT u.id, u.username, u.avatar_url, u.bio
		 FROM users u
		 JOIN user_follows uf ON u.id = uf.following_id
		 WHERE uf.follower_id = $1
		 ORDER BY uf.created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	return users, err
}

// FollowTag subscribes a user to a tag
func (s *Store) FollowTag(ctx context.Context, userID, tag string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tag_follows (user_id, tag)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, tag) DO NOTHING`, userID, tag)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return service.ErrAlreadyExists
	}
	return nil
}

// UnfollowTag removes a tag subscription
func (s *Store) UnfollowTag(ctx context.Context, userID, tag string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM tag_follows WHERE user_id = $1 AND tag = $2", userID, tag)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ListFollowedTags returns the tags a user follows, newest first
func (s *Store) ListFollowedTags(ctx context.Context, userID string) ([]string, error) {
	var tags []string
	err := s.db.SelectContext(ctx, &tags,
		"SELECT tag FROM tag_follows WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return tags, err
}

// UserStats aggregates published post count and total points earned
func (s *Store) UserStats(ctx context.Context, userID string) (postCount int, totalPoints int64, err error) {
	row := s.db.QueryRowxContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(points), 0)
		 FROM posts
		 WHERE user_id = $1 AND status = $2`, userID, models.PostStatusPublished)
	err = row.Scan(&postCount, &totalPoints)
	return postCount, totalPoints, err
}
