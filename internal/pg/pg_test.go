package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Begin(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		fn        func(conn *Conn) TransactionalFn
		expectErr string
	}{
		{
			name: "Commit on success",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").
					WithArgs(1).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					_, err := conn.Exec(ctx, "UPDATE users SET cash = cash WHERE id = $1", 1)
					return err
				}
			},
		},
		{
			name: "Rollback on error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return errors.New("validation failed")
				}
			},
			expectErr: "validation failed",
		},
		{
			name: "Begin error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return nil
				}
			},
			expectErr: "can't begin transaction: connection refused",
		},
		{
			name: "Commit error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return nil
				}
			},
			expectErr: "can't commit transaction: serialization failure",
		},
		{
			name: "Nested begin joins outer transaction",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(conn *Conn) TransactionalFn {
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)
			manager := NewTXManager(mock)
			conn := New(mock)

			fn := tt.fn(conn)
			if fn == nil {
				fn = func(ctx context.Context) error {
					return manager.Begin(ctx, func(ctx context.Context) error {
						return nil
					})
				}
			}

			err = manager.Begin(context.Background(), fn)

			if tt.expectErr != "" {
				assert.EqualError(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConn_WithoutTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT cash FROM users").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"cash"}).AddRow(int64(10)))

	conn := New(mock)
	var cash int64
	err = conn.QueryRow(context.Background(), "SELECT cash FROM users WHERE id = $1", 7).Scan(&cash)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), cash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
