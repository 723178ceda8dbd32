package service

import (
	"context"

	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the read side of the reward catalog and ledger
type CatalogStore interface {
	ListActiveRewards(ctx context.Context) ([]models.Reward, error)
	GetReward(ctx context.Context, rewardID string) (*models.Reward, error)
	ListRedemptions(ctx context.Context, userID string, limit, offset int) ([]models.Redemption, error)
}

// CatalogCache caches the active-reward listing. A miss is (nil, false, nil).
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]models.Reward, bool, error)
	SetCatalog(ctx context.Context, rewards []models.Reward) error
	InvalidateCatalog(ctx context.Context) error
}

// RewardService serves catalog reads and redemption history
type RewardService struct {
	store  CatalogStore
	cache  CatalogCache
	logger *zap.Logger
}

// NewRewardService creates a reward service. cache may be nil.
func NewRewardService(store CatalogStore, cache CatalogCache) *RewardService {
	return &RewardService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// RewardView is the public catalog shape. QuantityAvailable renders the
// unlimited sentinel as the string "unlimited".
type RewardView struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	PointsRequired    int64       `json:"points_required"`
	QuantityAvailable interface{} `json:"quantity_available"`
	ImageURL          *string     `json:"image_url,omitempty"`
	IsActive          bool        `json:"is_active"`
}

// ListRewards returns all active rewards ordered by ascending cost,
// serving from the cache when possible.
func (s *RewardService) ListRewards(ctx context.Context) ([]RewardView, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetCatalog(ctx); err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if ok {
			return toRewardViews(cached), nil
		}
	}

	rewards, err := s.store.ListActiveRewards(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, rewards); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return toRewardViews(rewards), nil
}

// GetReward returns a single reward by id
func (s *RewardService) GetReward(ctx context.Context, rewardID string) (*RewardView, error) {
	reward, err := s.store.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	view := toRewardView(*reward)
	return &view, nil
}

// RedemptionHistory returns a user's past redemptions, newest first
func (s *RewardService) RedemptionHistory(ctx context.Context, userID string, limit, offset int) ([]models.Redemption, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListRedemptions(ctx, userID, limit, offset)
}

func toRewardViews(rewards []models.Reward) []RewardView {
	views := make([]RewardView, len(rewards))
	for i, r := range rewards {
		views[i] = toRewardView(r)
	}
	return views
}

func toRewardView(r models.Reward) RewardView {
	view := RewardView{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		PointsRequired:    r.PointsRequired,
		QuantityAvailable: r.Quantity,
		ImageURL:          r.ImageURL,
		IsActive:          r.IsActive,
	}
	if r.Unlimited() {
		view.QuantityAvailable = "unlimited"
	}
	return view
}
