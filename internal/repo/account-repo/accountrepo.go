package accountrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCash(ctx context.Context, userID int) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.db.QueryRow(ctx, "SELECT cash FROM users WHERE id = $1", userID).Scan(&cash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrUserNotFound
		}
		zap.L().Error("failed to get cash", zap.Int("userID", userID), zap.Error(err))
		return decimal.Zero, err
	}
	return cash, nil
}

// LockCash reads the balance and holds the user's row lock until the
// surrounding transaction ends, so concurrent trades of the same user queue
// up behind it.
func (r *Repository) LockCash(ctx context.Context, userID int) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.db.QueryRow(ctx, "SELECT cash FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&cash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrUserNotFound
		}
		zap.L().Error("failed to lock cash", zap.Int("userID", userID), zap.Error(err))
		return decimal.Zero, err
	}
	return cash, nil
}

// CompareAndSwapCash sets the balance to next only if it still equals
// expected. It reports false when another writer changed it first.
func (r *Repository) CompareAndSwapCash(ctx context.Context, userID int, expected, next decimal.Decimal) (bool, error) {
	query := `
		UPDATE users
		SET cash = $1
		WHERE id = $2 AND cash = $3
	`
	tag, err := r.db.Exec(ctx, query, next, userID, expected)
	if err != nil {
		zap.L().Error("failed to update cash", zap.Int("userID", userID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
