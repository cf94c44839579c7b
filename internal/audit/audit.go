// Package audit periodically replays every account's deposit and trade logs
// and reports accounts whose stored cash disagrees with the replay.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/finance/internal/domain"
)

//go:generate mockgen -source=audit.go -destination=mock_audit.go -package=audit

const workers = 4

var ErrCashDrift = errors.New("stored cash differs from replayed logs")

type UserRepo interface {
	ListUserIDs(ctx context.Context) ([]int, error)
}

type LedgerRepo interface {
	GetCash(ctx context.Context, userID int) (decimal.Decimal, error)
	GetTransactionsByUserID(ctx context.Context, userID int) ([]domain.Transaction, error)
	GetDepositsByUserID(ctx context.Context, userID int) ([]domain.Deposit, error)
}

// Service is the ledger reconciler.
type Service struct {
	users      UserRepo
	ledger     LedgerRepo
	workerPool WorkerPoolI
	period     time.Duration
	inFlight   sync.Map
}

func New(period time.Duration, users UserRepo, ledger LedgerRepo) *Service {
	return &Service{
		users:      users,
		ledger:     ledger,
		workerPool: NewWorkerPool(workers),
		period:     period,
	}
}

// Start runs reconciliation rounds until ctx is done. A non-positive period
// disables it.
func (s *Service) Start(ctx context.Context) {
	if s.period <= 0 {
		s.workerPool.Close()
		zap.L().Info("ledger audit disabled")
		return
	}
	zap.L().Info("ledger audit started", zap.Duration("period", s.period))
	s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.workerPool.Close()
			zap.L().Info("context canceled, ledger audit stopped", zap.Int64("failedChecks", s.workerPool.Failed()))
			return
		case <-ticker.C:
			s.reconcileAll(ctx)
		}
	}
}

func (s *Service) reconcileAll(ctx context.Context) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		zap.L().Error("failed to list accounts for audit", zap.Error(err))
		return
	}

	for _, userID := range ids {
		if _, loaded := s.inFlight.LoadOrStore(userID, struct{}{}); loaded {
			continue
		}

		err := s.workerPool.AddTask(ctx, Task{
			UserID: userID,
			Run: func() error {
				defer s.inFlight.Delete(userID)
				return s.Reconcile(ctx, userID)
			},
		})
		if err != nil {
			s.inFlight.Delete(userID)
			zap.L().Warn("audit round interrupted", zap.Error(err))
			return
		}
	}
}

// Reconcile checks one account. The cash balance is read before and after
// the logs; if it moved in between, a trade raced the read and the account
// is checked again on the next round.
func (s *Service) Reconcile(ctx context.Context, userID int) error {
	before, err := s.ledger.GetCash(ctx, userID)
	if err != nil {
		return fmt.Errorf("audit user %d: %w", userID, err)
	}
	deposits, err := s.ledger.GetDepositsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("audit user %d: %w", userID, err)
	}
	txs, err := s.ledger.GetTransactionsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("audit user %d: %w", userID, err)
	}
	after, err := s.ledger.GetCash(ctx, userID)
	if err != nil {
		return fmt.Errorf("audit user %d: %w", userID, err)
	}
	if !before.Equal(after) {
		zap.L().Debug("account changed during audit", zap.Int("userID", userID))
		return nil
	}

	replayed := domain.ReplayCash(deposits, txs)
	if !replayed.Equal(after) {
		zap.L().Error("ledger drift detected",
			zap.Int("userID", userID),
			zap.Stringer("stored", after),
			zap.Stringer("replayed", replayed),
		)
		return fmt.Errorf("%w: user %d stored %s replayed %s", ErrCashDrift, userID, after, replayed)
	}
	return nil
}
