package store

import (
	"context"
	"database/sql"
	"fmt"

	"releaf-service/internal/models"
	"releaf-service/internal/service"
)

// ListActiveRewards returns active rewards ordered by ascending cost with a
// deterministic id tie-break.
func (s *Store) ListActiveRewards(ctx context.Context) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.db.SelectContext(ctx, &rewards,
		`SELECT id, name, description, points_required, quantity, image_url, is_active
		 FROM rewards
		 WHERE is_active = TRUE
		 ORDER BY points_required ASC, id ASC`)
	return rewards, err
}

// GetReward retrieves a reward by id regardless of active flag
func (s *Store) GetReward(ctx context.Context, rewardID string) (*models.Reward, error) {
	var reward models.Reward
	err := s.db.GetContext(ctx, &reward,
		`SELECT id, name, description, points_required, quantity, image_url, is_active
		 FROM rewards
		 WHERE id = $1`, rewardID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: reward %s", service.ErrNotFound, rewardID)
	}
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// ListRedemptions returns a user's redemption history, newest first
func (s *Store) ListRedemptions(ctx context.Context, userID string, limit, offset int) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := s.db.SelectContext(ctx, &redemptions,
		`SELECT id, user_id, points_spent, reward_item, reward_description, created_at
		 FROM redemptions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	return redemptions, err
}
