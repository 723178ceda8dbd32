package service

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the redemption engine. All of them mean the
// transaction was rolled back and no state changed.
var (
	// ErrValidation indicates a malformed cart (empty, bad quantity, bad id).
	ErrValidation = errors.New("validation error")

	// ErrRewardNotFound indicates a reward id that does not exist or is inactive.
	ErrRewardNotFound = errors.New("reward not found or inactive")

	// ErrOutOfStock indicates a requested quantity exceeding available finite stock.
	ErrOutOfStock = errors.New("insufficient stock")

	// ErrInsufficientFunds indicates the cart total exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient credits")

	// ErrPrincipalNotFound indicates the authenticated user id has no balance row.
	// Unlike the errors above this is an internal inconsistency, not a caller error.
	ErrPrincipalNotFound = errors.New("principal not found")

	ErrUserExists    = errors.New("user already exists")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrAlreadyExists = errors.New("already exists")
)

// ErrorCode maps a domain error to its stable machine-readable reason code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrRewardNotFound):
		return "reward_not_found"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrPrincipalNotFound):
		return "principal_not_found"
	case errors.Is(err, ErrUserExists):
		return "user_exists"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal"
	}
}

// OutOfStockError carries the reward name and the available count so callers
// can tell the user exactly what ran out.
type OutOfStockError struct {
	RewardID   string
	RewardName string
	Requested  int
	Available  int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d", e.RewardName, e.Available)
}

// Is makes errors.Is(err, ErrOutOfStock) match.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}
