package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

//go:generate mockgen -source=pg.go -destination=mock_pg.go -package=pg

// Database is the query surface shared by *pgxpool.Pool, pgx.Tx and pgxmock.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TransactionalFn func(ctx context.Context) error

// TXManager runs fn in a single store transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
}

type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// Conn routes queries to the transaction carried by ctx, or to the pool.
type Conn struct {
	db Database
}

func New(db Database) *Conn {
	return &Conn{db: db}
}

func (c *Conn) executor(ctx context.Context) Database {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return c.db
}

func (c *Conn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return c.executor(ctx).Exec(ctx, sql, arguments...)
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.executor(ctx).Query(ctx, sql, args...)
}

func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.executor(ctx).QueryRow(ctx, sql, args...)
}

type Manager struct {
	db Beginner
}

func NewTXManager(db Beginner) *Manager {
	return &Manager{db: db}
}

// Begin joins the transaction already present in ctx, if any.
func (m *Manager) Begin(ctx context.Context, fn TransactionalFn) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		zap.L().Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				zap.L().Error("failed to rollback transaction", zap.Error(rbErr))
			}
			return
		}
		if err = tx.Commit(ctx); err != nil {
			zap.L().Error("failed to commit transaction", zap.Error(err))
			err = fmt.Errorf("can't commit transaction: %w", err)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}
