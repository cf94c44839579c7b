package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/finance/internal/domain"
	memoryrepo "github.com/GlebRadaev/finance/internal/repo/memory-repo"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *MockLedgerRepo) {
	ctrl := gomock.NewController(t)
	users := NewMockUserRepo(ctrl)
	ledger := NewMockLedgerRepo(ctrl)
	service := New(time.Millisecond, users, ledger)
	t.Cleanup(service.workerPool.Close)
	return service, users, ledger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Reconcile(t *testing.T) {
	deposits := []domain.Deposit{{Amount: dec("10000.00")}, {Amount: dec("150.00")}}
	txs := []domain.Transaction{
		{Symbol: "AAA", Shares: 10, Price: dec("50.00"), Total: dec("500.00")},
		{Symbol: "AAA", Shares: -10, Price: dec("60.00"), Total: dec("-600.00")},
	}

	tests := []struct {
		name        string
		prepareMock func(ledger *MockLedgerRepo)
		expectedErr error
	}{
		{
			name: "Balanced account",
			prepareMock: func(ledger *MockLedgerRepo) {
				ledger.EXPECT().GetCash(gomock.Any(), 1).Return(dec("10250.00"), nil).Times(2)
				ledger.EXPECT().GetDepositsByUserID(gomock.Any(), 1).Return(deposits, nil)
				ledger.EXPECT().GetTransactionsByUserID(gomock.Any(), 1).Return(txs, nil)
			},
		},
		{
			name: "Drift detected",
			prepareMock: func(ledger *MockLedgerRepo) {
				ledger.EXPECT().GetCash(gomock.Any(), 1).Return(dec("10000.00"), nil).Times(2)
				ledger.EXPECT().GetDepositsByUserID(gomock.Any(), 1).Return(deposits, nil)
				ledger.EXPECT().GetTransactionsByUserID(gomock.Any(), 1).Return(txs, nil)
			},
			expectedErr: ErrCashDrift,
		},
		{
			name: "Account moved during the read",
			prepareMock: func(ledger *MockLedgerRepo) {
				gomock.InOrder(
					ledger.EXPECT().GetCash(gomock.Any(), 1).Return(dec("10000.00"), nil),
					ledger.EXPECT().GetCash(gomock.Any(), 1).Return(dec("9500.00"), nil),
				)
				ledger.EXPECT().GetDepositsByUserID(gomock.Any(), 1).Return(deposits, nil)
				ledger.EXPECT().GetTransactionsByUserID(gomock.Any(), 1).Return(txs, nil)
			},
		},
		{
			name: "Store error",
			prepareMock: func(ledger *MockLedgerRepo) {
				ledger.EXPECT().GetCash(gomock.Any(), 1).Return(decimal.Zero, domain.ErrUserNotFound)
			},
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, ledger := NewMock(t)
			tt.prepareMock(ledger)

			err := service.Reconcile(context.Background(), 1)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_reconcileAll(t *testing.T) {
	service, users, ledger := NewMock(t)

	users.EXPECT().ListUserIDs(gomock.Any()).Return([]int{1, 2}, nil)
	for _, id := range []int{1, 2} {
		ledger.EXPECT().GetCash(gomock.Any(), id).Return(dec("10.00"), nil).Times(2)
		ledger.EXPECT().GetDepositsByUserID(gomock.Any(), id).Return([]domain.Deposit{{Amount: dec("10.00")}}, nil)
		ledger.EXPECT().GetTransactionsByUserID(gomock.Any(), id).Return(nil, nil)
	}

	service.reconcileAll(context.Background())

	assert.Eventually(t, func() bool {
		_, busy1 := service.inFlight.Load(1)
		_, busy2 := service.inFlight.Load(2)
		return !busy1 && !busy2
	}, time.Second, 5*time.Millisecond)
}

func TestService_reconcileAllListError(t *testing.T) {
	service, users, _ := NewMock(t)

	users.EXPECT().ListUserIDs(gomock.Any()).Return(nil, errors.New("db error"))
	service.reconcileAll(context.Background())
}

func TestService_StartDisabled(t *testing.T) {
	service := New(0, nil, nil)
	defer service.workerPool.Close()

	done := make(chan struct{})
	go func() {
		service.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled audit should return immediately")
	}
}

func TestService_StartStopsOnCancel(t *testing.T) {
	store := memoryrepo.New()
	ctx := context.Background()
	user, err := store.Create(ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	ok, err := store.CompareAndSwapCash(ctx, user.ID, decimal.Zero, dec("10.00"))
	require.NoError(t, err)
	require.True(t, ok)
	_, err = store.CreateDeposit(ctx, &domain.Deposit{UserID: user.ID, Amount: dec("10.00")})
	require.NoError(t, err)

	service := New(time.Millisecond, store, store)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		service.Start(runCtx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, service.Reconcile(ctx, user.ID))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("audit did not stop after cancel")
	}
}

func TestService_ReconcileAllCountsDrift(t *testing.T) {
	store := memoryrepo.New()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		user, err := store.Create(ctx, &domain.User{Username: name})
		require.NoError(t, err)
		_, err = store.CreateDeposit(ctx, &domain.Deposit{UserID: user.ID, Amount: dec("10.00")})
		require.NoError(t, err)
		ok, err := store.CompareAndSwapCash(ctx, user.ID, decimal.Zero, dec("10.00"))
		require.NoError(t, err)
		require.True(t, ok)
	}
	// bob's cash moves without a log entry
	ok, err := store.CompareAndSwapCash(ctx, 2, dec("10.00"), dec("99.00"))
	require.NoError(t, err)
	require.True(t, ok)

	service := New(time.Hour, store, store)
	service.reconcileAll(ctx)
	service.workerPool.Close()

	assert.Equal(t, int64(1), service.workerPool.Failed())
}
