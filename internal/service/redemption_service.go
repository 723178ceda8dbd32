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

// RedemptionTx is the store view inside one redemption transaction. Every
// method sees the same isolated snapshot; BalanceForUpdate and
// ActiveRewardForUpdate take row locks that hold until commit or rollback.
type RedemptionTx interface {
	// BalanceForUpdate locks the user's balance row and returns the balance.
	// Returns ErrPrincipalNotFound if the user does not exist.
	BalanceForUpdate(ctx context.Context, userID string) (int64, error)

	// ActiveRewardForUpdate locks and returns an active reward.
	// Returns ErrRewardNotFound if the reward is absent or inactive.
	ActiveRewardForUpdate(ctx context.Context, rewardID string) (*models.Reward, error)

	// DebitBalance subtracts amount from the user's balance and returns the
	// new balance. The caller must have verified sufficiency under the lock.
	DebitBalance(ctx context.Context, userID string, amount int64) (int64, error)

	// DecrementStock decrements finite stock. Never called for unlimited
	// rewards. Fails rather than letting stock go negative.
	DecrementStock(ctx context.Context, rewardID string, quantity int) error

	// AppendRedemption appends one ledger row, filling ID and CreatedAt.
	AppendRedemption(ctx context.Context, rec *models.Redemption) error
}

// RedemptionStore runs a function inside a single transaction. If the
// function returns an error every effect is discarded.
type RedemptionStore interface {
	WithRedemptionTx(ctx context.Context, fn func(ctx context.Context, tx RedemptionTx) error) error
}

// RedemptionPublisher emits the post-commit redemption event.
type RedemptionPublisher interface {
	PublishRedemptionCompleted(ctx context.Context, event *models.RedemptionCompletedEvent) error
}

// CatalogInvalidator drops cached catalog listings after stock changes.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context) error
}

// RedemptionService converts a cart of reward requests into one atomic
// debit-and-decrement transaction over the balance store, the reward
// catalog, and the redemption ledger.
type RedemptionService struct {
	store       RedemptionStore
	publisher   RedemptionPublisher
	invalidator CatalogInvalidator
	logger      *zap.Logger
	maxQuantity int
	maxLines    int
}

// NewRedemptionService creates a redemption service. publisher and
// invalidator may be nil.
func NewRedemptionService(store RedemptionStore, publisher RedemptionPublisher, invalidator CatalogInvalidator, maxQuantity, maxLines int) *RedemptionService {
	if maxQuantity <= 0 {
		maxQuantity = 100
	}
	if maxLines <= 0 {
		maxLines = 50
	}
	return &RedemptionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      util.GetLogger(),
		maxQuantity: maxQuantity,
		maxLines:    maxLines,
	}
}

// RedeemRequest is the cart payload submitted in one redemption call
type RedeemRequest struct {
	Items []RedeemItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RedeemItemRequest is a single cart line
type RedeemItemRequest struct {
	RewardID string `json:"reward_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=100"`
}

// RedeemedItem describes one applied cart line in the response
type RedeemedItem struct {
	RewardID      string `json:"reward_id"`
	RewardName    string `json:"reward_name"`
	Quantity      int    `json:"quantity"`
	PointsPerItem int64  `json:"points_per_item"`
	TotalPoints   int64  `json:"total_points"`
}

// redeemLine is the validated view of one cart line before apply
type redeemLine struct {
	item        RedeemedItem
	description string
	unlimited   bool
}

// RedeemResponse is the post-commit snapshot returned on success
type RedeemResponse struct {
	RedemptionIDs    []string       `json:"redemption_ids"`
	ItemsRedeemed    []RedeemedItem `json:"items_redeemed"`
	TotalPointsSpent int64          `json:"total_points_spent"`
	RemainingCredits int64          `json:"remaining_credits"`
	OrderStatus      string         `json:"order_status"`
}

// Redeem runs the whole cart as one transaction: validate every line,
// check the aggregate against the locked balance, then debit, decrement
// stock, and append one ledger row per line. Any failure rolls everything
// back; partial application is never observable.
//
// Duplicate reward ids in one cart are processed as independent lines,
// matching the behavior of the catalog's public contract.
func (s *RedemptionService) Redeem(ctx context.Context, userID string, req *RedeemRequest) (*RedeemResponse, error) {
	ctx, span := util.StartSpan(ctx, "RedemptionService.Redeem")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RedemptionLatency.Observe(time.Since(start).Seconds())
	}()

	if err := s.validateCart(req); err != nil {
		util.RedemptionsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	var resp *RedeemResponse
	err := s.store.WithRedemptionTx(ctx, func(ctx context.Context, tx RedemptionTx) error {
		balance, err := tx.BalanceForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// Validate every line before applying anything so the balance
		// check sees the true aggregate demand.
		var totalPointsNeeded int64
		lines := make([]redeemLine, 0, len(req.Items))
		for _, item := range req.Items {
			reward, err := tx.ActiveRewardForUpdate(ctx, item.RewardID)
			if err != nil {
				return err
			}

			if !reward.Unlimited() && reward.Quantity < item.Quantity {
				return &OutOfStockError{
					RewardID:   reward.ID,
					RewardName: reward.Name,
					Requested:  item.Quantity,
					Available:  reward.Quantity,
				}
			}

			lineTotal := reward.PointsRequired * int64(item.Quantity)
			totalPointsNeeded += lineTotal
			lines = append(lines, redeemLine{
				item: RedeemedItem{
					RewardID:      reward.ID,
					RewardName:    reward.Name,
					Quantity:      item.Quantity,
					PointsPerItem: reward.PointsRequired,
					TotalPoints:   lineTotal,
				},
				description: reward.Description,
				unlimited:   reward.Unlimited(),
			})
		}

		if balance < totalPointsNeeded {
			return ErrInsufficientFunds
		}

		remaining, err := tx.DebitBalance(ctx, userID, totalPointsNeeded)
		if err != nil {
			return err
		}

		redemptionIDs := make([]string, 0, len(lines))
		items := make([]RedeemedItem, 0, len(lines))
		for _, line := range lines {
			if !line.unlimited {
				if err := tx.DecrementStock(ctx, line.item.RewardID, line.item.Quantity); err != nil {
					return err
				}
			}

			rec := &models.Redemption{
				UserID:            userID,
				PointsSpent:       line.item.TotalPoints,
				RewardItem:        line.item.RewardName,
				RewardDescription: line.description,
			}
			if err := tx.AppendRedemption(ctx, rec); err != nil {
				return err
			}
			redemptionIDs = append(redemptionIDs, rec.ID)
			items = append(items, line.item)
		}

		resp = &RedeemResponse{
			RedemptionIDs:    redemptionIDs,
			ItemsRedeemed:    items,
			TotalPointsSpent: totalPointsNeeded,
			RemainingCredits: remaining,
			OrderStatus:      "processing",
		}
		return nil
	})
	if err != nil {
		util.RedemptionsFailedTotal.WithLabelValues(ErrorCode(err)).Inc()
		return nil, err
	}

	util.RedemptionsTotal.Inc()
	util.RedemptionPointsSpent.Add(float64(resp.TotalPointsSpent))
	s.logger.Info("Redemption completed",
		zap.String("user_id", userID),
		zap.Int("lines", len(resp.ItemsRedeemed)),
		zap.Int64("points_spent", resp.TotalPointsSpent))

	s.afterCommit(ctx, userID, resp)
	return resp, nil
}

// afterCommit runs the side channels that must stay outside the
// transaction boundary: event publishing and cache invalidation.
func (s *RedemptionService) afterCommit(ctx context.Context, userID string, resp *RedeemResponse) {
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
			s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}

	items := make([]models.RedemptionItemData, len(resp.ItemsRedeemed))
	for i, item := range resp.ItemsRedeemed {
		items[i] = models.RedemptionItemData{
			RewardID:      item.RewardID,
			RewardName:    item.RewardName,
			Quantity:      item.Quantity,
			PointsPerItem: item.PointsPerItem,
			TotalPoints:   item.TotalPoints,
		}
	}

	event := &models.RedemptionCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeRedemptionCompleted,
			Timestamp: time.Now(),
		},
		UserID:           userID,
		RedemptionIDs:    resp.RedemptionIDs,
		Items:            items,
		TotalPointsSpent: resp.TotalPointsSpent,
		RemainingCredits: resp.RemainingCredits,
	}

	if err := s.publisher.PublishRedemptionCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish RedemptionCompleted event", zap.Error(err))
	}
}

func (s *RedemptionService) validateCart(req *RedeemRequest) error {
	if req == nil || len(req.Items) == 0 {
		return fmt.Errorf("%w: cart must contain at least one item", ErrValidation)
	}
	if len(req.Items) > s.maxLines {
		return fmt.Errorf("%w: cart exceeds %d lines", ErrValidation, s.maxLines)
	}
	for i, item := range req.Items {
		if item.RewardID == "" {
			return fmt.Errorf("%w: items[%d].reward_id is required", ErrValidation, i)
		}
		if item.Quantity < 1 || item.Quantity > s.maxQuantity {
			return fmt.Errorf("%w: items[%d].quantity must be between 1 and %d", ErrValidation, i, s.maxQuantity)
		}
	}
	return nil
}
