package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, "SELECT id, username, password_hash, cash, created_at FROM users WHERE username = $1", username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Cash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, cash, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Username, user.PasswordHash).Scan(&user.ID, &user.Cash, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) ListUserIDs(ctx context.Context) ([]int, error) {
	rows, err := repo.db.Query(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		zap.L().Error("can't scan user ids", zap.Error(err))
		return nil, err
	}
	return ids, nil
}
