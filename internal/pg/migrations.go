package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/GlebRadaev/finance/migrations"
)

// gooseLogger routes goose output into the zap global.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	zap.S().Infof(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	zap.S().Fatalf(format, v...)
}

// RunMigrations applies the embedded schema migrations to the pool's database.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	zap.L().Info("ledger schema is up to date", zap.Int64("version", version))
	return nil
}
