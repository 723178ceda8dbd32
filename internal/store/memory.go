package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"releaf-service/internal/models"
	"releaf-service/internal/service"

	"github.com/google/uuid"
)

// Memory is an in-memory implementation of the redemption store contract,
// used in tests and local development. A store-wide mutex stands in for the
// database's row locks: transactions serialize, and a snapshot taken at
// begin is restored on any failure so rollback semantics match Postgres.
type Memory struct {
	mu          sync.Mutex
	balances    map[string]int64
	rewards     map[string]*models.Reward
	redemptions []models.Redemption
	nowFn       func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]int64),
		rewards:  make(map[string]*models.Reward),
		nowFn:    time.Now,
	}
}

// PutBalance seeds a user balance
func (m *Memory) PutBalance(userID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// PutReward seeds a reward
func (m *Memory) PutReward(reward models.Reward) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := reward
	m.rewards[reward.ID] = &copied
}

// Balance returns the current balance for a user
func (m *Memory) Balance(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// RewardQuantity returns the current stock for a reward
func (m *Memory) RewardQuantity(rewardID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rewards[rewardID]; ok {
		return r.Quantity
	}
	return 0
}

// Redemptions returns a copy of the ledger
func (m *Memory) Redemptions() []models.Redemption {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Redemption, len(m.redemptions))
	copy(out, m.redemptions)
	return out
}

// WithRedemptionTx serializes the whole transaction under the store mutex
// and restores the pre-transaction snapshot if fn fails.
func (m *Memory) WithRedemptionTx(ctx context.Context, fn func(ctx context.Context, tx service.RedemptionTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapBalances := make(map[string]int64, len(m.balances))
	for k, v := range m.balances {
		snapBalances[k] = v
	}
	snapRewards := make(map[string]models.Reward, len(m.rewards))
	for k, v := range m.rewards {
		snapRewards[k] = *v
	}
	snapLedgerLen := len(m.redemptions)

	err := fn(ctx, &memoryTx{store: m})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.balances = snapBalances
		for k, v := range snapRewards {
			copied := v
			m.rewards[k] = &copied
		}
		m.redemptions = m.redemptions[:snapLedgerLen]
		return err
	}
	return nil
}

type memoryTx struct {
	store *Memory
}

func (t *memoryTx) BalanceForUpdate(_ context.Context, userID string) (int64, error) {
	balance, ok := t.store.balances[userID]
	if !ok {
		return 0, service.ErrPrincipalNotFound
	}
	return balance, nil
}

func (t *memoryTx) ActiveRewardForUpdate(_ context.Context, rewardID string) (*models.Reward, error) {
	reward, ok := t.store.rewards[rewardID]
	if !ok || !reward.IsActive {
		return nil, fmt.Errorf("%w: %s", service.ErrRewardNotFound, rewardID)
	}
	copied := *reward
	return &copied, nil
}

func (t *memoryTx) DebitBalance(_ context.Context, userID string, amount int64) (int64, error) {
	balance, ok := t.store.balances[userID]
	if !ok {
		return 0, service.ErrPrincipalNotFound
	}
	if balance < amount {
		return 0, service.ErrInsufficientFunds
	}
	t.store.balances[userID] = balance - amount
	return balance - amount, nil
}

func (t *memoryTx) DecrementStock(_ context.Context, rewardID string, quantity int) error {
	reward, ok := t.store.rewards[rewardID]
	if !ok {
		return fmt.Errorf("%w: %s", service.ErrRewardNotFound, rewardID)
	}
	if reward.Quantity < quantity {
		return fmt.Errorf("%w: reward %s", service.ErrOutOfStock, rewardID)
	}
	reward.Quantity -= quantity
	return nil
}

func (t *memoryTx) AppendRedemption(_ context.Context, rec *models.Redemption) error {
	rec.ID = uuid.New().String()
	rec.CreatedAt = t.store.nowFn()
	t.store.redemptions = append(t.store.redemptions, *rec)
	return nil
}
