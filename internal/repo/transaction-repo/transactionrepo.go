package transactionrepo

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

func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, symbol, name, shares, price, total, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, tx.UserID, tx.Symbol, tx.Name, tx.Shares, tx.Price, tx.Total, tx.ExecutedAt).Scan(&tx.ID)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) GetTransactionsByUserID(ctx context.Context, userID int) ([]domain.Transaction, error) {
	query := `
        SELECT id, user_id, symbol, name, shares, price, total, executed_at
        FROM transactions
        WHERE user_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Symbol, &tx.Name, &tx.Shares, &tx.Price, &tx.Total, &tx.ExecutedAt)
		if err != nil {
			zap.L().Error("failed to scan transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate transactions", zap.Error(err))
		return nil, err
	}

	return txs, nil
}

func (r *Repository) GetSharesHeld(ctx context.Context, userID int, symbol string) (int64, error) {
	query := `
        SELECT COALESCE(SUM(shares), 0)::BIGINT
        FROM transactions
        WHERE user_id = $1 AND symbol = $2
    `
	var shares int64
	if err := r.db.QueryRow(ctx, query, userID, symbol).Scan(&shares); err != nil {
		zap.L().Error("failed to sum shares", zap.String("symbol", symbol), zap.Error(err))
		return 0, err
	}
	return shares, nil
}
