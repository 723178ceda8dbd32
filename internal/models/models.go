package models

import (
	"time"

	"github.com/lib/pq"
)

// UnlimitedStock is the sentinel quantity for rewards without a finite stock.
const UnlimitedStock = -1

// User represents a registered account with its carbon-credit balance
type User struct {
	ID            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Bio           *string   `db:"bio" json:"bio,omitempty"`
	AvatarURL     *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CarbonCredits int64     `db:"carbon_credits" json:"carbon_credits"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RefreshToken stores a hashed refresh token for session renewal
type RefreshToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Reward represents a catalog item redeemable for carbon credits.
// Quantity is UnlimitedStock (-1) for unlimited rewards, otherwise a
// finite count that never goes negative.
type Reward struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Description    string  `db:"description" json:"description"`
	PointsRequired int64   `db:"points_required" json:"points_required"`
	Quantity       int     `db:"quantity" json:"quantity"`
	ImageURL       *string `db:"image_url" json:"image_url,omitempty"`
	IsActive       bool    `db:"is_active" json:"is_active"`
}

// Unlimited reports whether the reward has no finite stock.
func (r *Reward) Unlimited() bool {
	return r.Quantity == UnlimitedStock
}

// Redemption is one immutable row in the redemption ledger. Reward name and
// description are snapshotted at redemption time so later catalog edits do
// not alter history.
type Redemption struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	PointsSpent       int64     `db:"points_spent" json:"points_spent"`
	RewardItem        string    `db:"reward_item" json:"reward_item"`
	RewardDescription string    `db:"reward_description" json:"reward_description"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Post represents an eco-action post
type Post struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	ImageURL    string         `db:"image_url" json:"image_url"`
	Description string         `db:"description" json:"description"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Points      int64          `db:"points" json:"points"`
	Status      string         `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`

	// Joined author columns, populated on feed queries
	Username  *string `db:"username" json:"username,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// Post statuses
const (
	PostStatusPendingPoints = "PENDING_POINTS"
	PostStatusPublished     = "PUBLISHED"
)

// UserFollow links a follower to a followed user
type UserFollow struct {
	FollowerID  string    `db:"follower_id" json:"follower_id"`
	FollowingID string    `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TagFollow links a user to a followed tag
type TagFollow struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Tag       string    `db:"tag" json:"tag"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the compact author view returned by follower listings
type UserSummary struct {
	ID        string  `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio       *string `db:"bio" json:"bio,omitempty"`
}
