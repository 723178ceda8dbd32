package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"releaf-service/internal/models"
	"releaf-service/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres-backed persistence layer.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// WithRedemptionTx runs fn inside a single database transaction. The
// transaction commits only if fn returns nil; any error rolls back every
// effect, including row locks taken by the tx view.
func (s *Store) WithRedemptionTx(ctx context.Context, fn func(ctx context.Context, tx service.RedemptionTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &redemptionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// redemptionTx implements service.RedemptionTx over one sqlx transaction.
type redemptionTx struct {
	tx *sqlx.Tx
}

// BalanceForUpdate locks the user's row so concurrent redemptions by the
// same principal serialize instead of racing on a stale balance read.
func (r *redemptionTx) BalanceForUpdate(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.tx.GetContext(ctx, &balance,
		"SELECT carbon_credits FROM users WHERE id = $1 FOR UPDATE", userID)
	if err == sql.ErrNoRows {
		return 0, service.ErrPrincipalNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock balance: %w", err)
	}
	return balance, nil
}

// ActiveRewardForUpdate locks the reward row for the rest of the
// transaction, so two carts competing for the last units serialize.
func (r *redemptionTx) ActiveRewardForUpdate(ctx context.Context, rewardID string) (*models.Reward, error) {
	var reward models.Reward
	err := r.tx.GetContext(ctx, &reward,
		`SELECT id, name, description, points_required, quantity, image_url, is_active
		 FROM rewards
		 WHERE id = $1 AND is_active = TRUE
		 FOR UPDATE`, rewardID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", service.ErrRewardNotFound, rewardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reward: %w", err)
	}
	return &reward, nil
}

func (r *redemptionTx) DebitBalance(ctx context.Context, userID string, amount int64) (int64, error) {
	var remaining int64
	err := r.tx.GetContext(ctx, &remaining,
		`UPDATE users
		 SET carbon_credits = carbon_credits - $1, updated_at = NOW()
		 WHERE id = $2 AND carbon_credits >= $1
		 RETURNING carbon_credits`, amount, userID)
	if err == sql.ErrNoRows {
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit balance: %w", err)
	}
	return remaining, nil
}

// DecrementStock conditionally decrements finite stock. The WHERE guard is
// a second line of defense behind the row lock: stock can never go negative
// even if a caller skips the availability check.
func (r *redemptionTx) DecrementStock(ctx context.Context, rewardID string, quantity int) error {
	res, err := r.tx.ExecContext(ctx,
		`UPDATE rewards
		 SET quantity = quantity - $1
		 WHERE id = $2 AND quantity >= $1`, quantity, rewardID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: reward %s", service.ErrOutOfStock, rewardID)
	}
	return nil
}

func (r *redemptionTx) AppendRedemption(ctx context.Context, rec *models.Redemption) error {
	err := r.tx.QueryRowxContext(ctx,
		`INSERT INTO redemptions (user_id, points_spent, reward_item, reward_description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		rec.UserID, rec.PointsSpent, rec.RewardItem, rec.RewardDescription).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append redemption: %w", err)
	}
	return nil
}
