package depositrepo

import (
	"context"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
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

func (r *Repository) CreateDeposit(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error) {
	query := `
		INSERT INTO deposits (user_id, amount, deposited_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, deposit.UserID, deposit.Amount, deposit.DepositedAt).Scan(&deposit.ID)
	if err != nil {
		zap.L().Error("can't save deposit", zap.Error(err))
		return nil, err
	}
	return deposit, nil
}

func (r *Repository) GetDepositsByUserID(ctx context.Context, userID int) ([]domain.Deposit, error) {
	query := `
        SELECT id, user_id, amount, deposited_at
        FROM deposits
        WHERE user_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch deposits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		if err := rows.Scan(&d.ID, &d.UserID, &d.Amount, &d.DepositedAt); err != nil {
			zap.L().Error("failed to scan deposit row", zap.Error(err))
			return nil, err
		}
		deposits = append(deposits, d)
	}

	return deposits, rows.Err()
}
