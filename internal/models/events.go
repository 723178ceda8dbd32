package models

import "time"

// Event types
const (
	EventTypePostPublished       = "POST_PUBLISHED"
	EventTypeRedemptionCompleted = "REDEMPTION_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PostPublishedEvent published when a post is scored and its author credited
type PostPublishedEvent struct {
	BaseEvent
	PostID   string   `json:"post_id"`
	UserID   string   `json:"user_id"`
	Points   int64    `json:"points"`
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback"`
}

// RedemptionCompletedEvent published after a redemption transaction commits.
// Consumed by the fulfillment worker for downstream order processing.
type RedemptionCompletedEvent struct {
	BaseEvent
	UserID           string               `json:"user_id"`
	RedemptionIDs    []string             `json:"redemption_ids"`
	Items            []RedemptionItemData `json:"items"`
	TotalPointsSpent int64                `json:"total_points_spent"`
	RemainingCredits int64                `json:"remaining_credits"`
}

// RedemptionItemData represents one cart line in a redemption event
type RedemptionItemData struct {
	RewardID      string `json:"reward_id"`
	RewardName    string `json:"reward_name"`
	Quantity      int    `json:"quantity"`
	PointsPerItem int64  `json:"points_per_item"`
	TotalPoints   int64  `json:"total_points"`
}
