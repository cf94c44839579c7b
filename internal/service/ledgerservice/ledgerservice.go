package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/GlebRadaev/finance/pkg/validate"
)

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

const (
	maxAttempts      = 3
	quoteConcurrency = 8
)

var errCashConflict = errors.New("cash changed concurrently")

type AccountRepo interface {
	GetCash(ctx context.Context, userID int) (decimal.Decimal, error)
	LockCash(ctx context.Context, userID int) (decimal.Decimal, error)
	CompareAndSwapCash(ctx context.Context, userID int, expected, next decimal.Decimal) (bool, error)
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetTransactionsByUserID(ctx context.Context, userID int) ([]domain.Transaction, error)
	GetSharesHeld(ctx context.Context, userID int, symbol string) (int64, error)
}

type DepositRepo interface {
	CreateDeposit(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error)
	GetDepositsByUserID(ctx context.Context, userID int) ([]domain.Deposit, error)
}

type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*domain.Quote, error)
}

// Service is the account ledger: cash, trades and deposits of every user.
type Service struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
	depositRepo     DepositRepo
	txManager       pg.TXManager
	quotes          QuoteProvider
	startingCash    decimal.Decimal
	now             func() time.Time
}

func New(
	accountRepo AccountRepo,
	transactionRepo TransactionRepo,
	depositRepo DepositRepo,
	txManager pg.TXManager,
	quotes QuoteProvider,
	startingCash decimal.Decimal,
) *Service {
	return &Service{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		depositRepo:     depositRepo,
		txManager:       txManager,
		quotes:          quotes,
		startingCash:    startingCash,
		now:             time.Now,
	}
}

func (s *Service) GetPortfolio(ctx context.Context, userID int) (*domain.Portfolio, error) {
	cash, err := s.accountRepo.GetCash(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get cash", zap.Int("userID", userID), zap.Error(err))
		return nil, storeErr(err)
	}
	txs, err := s.transactionRepo.GetTransactionsByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get transactions", zap.Int("userID", userID), zap.Error(err))
		return nil, storeErr(err)
	}

	positions := domain.Holdings(txs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	for i := range positions {
		pos := &positions[i]
		g.Go(func() error {
			quote, err := s.quotes.Lookup(gctx, pos.Symbol)
			if err != nil {
				return err
			}
			pos.CurrentPrice = quote.Price
			if quote.Name != "" {
				pos.Name = quote.Name
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("failed to price portfolio", zap.Int("userID", userID), zap.Error(err))
		if errors.Is(err, domain.ErrQuoteUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}

	total := cash
	for _, pos := range positions {
		total = total.Add(pos.Value())
	}

	return &domain.Portfolio{
		Positions:  positions,
		Cash:       cash,
		TotalValue: total,
	}, nil
}

func (s *Service) Deposit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !validate.Amount(amount) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	var cash decimal.Decimal
	err := s.atomically(ctx, "deposit", userID, func(ctx context.Context) error {
		next, err := s.addCash(ctx, userID, amount)
		if err != nil {
			return err
		}
		deposit := &domain.Deposit{
			UserID:      userID,
			Amount:      amount,
			DepositedAt: s.now(),
		}
		if _, err := s.depositRepo.CreateDeposit(ctx, deposit); err != nil {
			return err
		}
		cash = next
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	zap.L().Info("cash deposited", zap.Int("userID", userID), zap.Stringer("amount", amount))
	return cash, nil
}

// OpenAccount credits a newly registered user with the starting cash and
// records it as their first deposit.
func (s *Service) OpenAccount(ctx context.Context, userID int) (decimal.Decimal, error) {
	return s.Deposit(ctx, userID, s.startingCash)
}

func (s *Service) Buy(ctx context.Context, userID int, symbol string, shares int64) (*domain.TradeResult, error) {
	symbol, ok := validate.Symbol(symbol)
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		zap.L().Warn("buy rejected, no quote", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}
	if !validate.ShareCount(shares) {
		return nil, domain.ErrInvalidShareCount
	}

	cost := quote.Price.Mul(decimal.NewFromInt(shares))
	cash, err := s.accountRepo.GetCash(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get cash", zap.Int("userID", userID), zap.Error(err))
		return nil, storeErr(err)
	}
	if cash.LessThan(cost) {
		return nil, domain.ErrInsufficientFunds
	}

	result := &domain.TradeResult{}
	err = s.atomically(ctx, "buy", userID, func(ctx context.Context) error {
		next, err := s.addCash(ctx, userID, cost.Neg())
		if err != nil {
			return err
		}
		tx, err := s.transactionRepo.CreateTransaction(ctx, &domain.Transaction{
			UserID:     userID,
			Symbol:     symbol,
			Name:       quote.Name,
			Shares:     shares,
			Price:      quote.Price,
			Total:      cost,
			ExecutedAt: s.now(),
		})
		if err != nil {
			return err
		}
		result.Transaction = *tx
		result.Cash = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("shares bought",
		zap.Int("userID", userID),
		zap.String("symbol", symbol),
		zap.Int64("shares", shares),
		zap.Stringer("price", quote.Price),
	)
	return result, nil
}

func (s *Service) Sell(ctx context.Context, userID int, symbol string, shares int64) (*domain.TradeResult, error) {
	if !validate.ShareCount(shares) {
		return nil, domain.ErrInvalidShareCount
	}
	symbol, ok := validate.Symbol(symbol)
	if !ok {
		return nil, domain.ErrInsufficientShares
	}
	if err := s.checkHoldings(ctx, userID, symbol, shares); err != nil {
		return nil, err
	}
	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		zap.L().Warn("sell rejected, no quote", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))

	result := &domain.TradeResult{}
	err = s.atomically(ctx, "sell", userID, func(ctx context.Context) error {
		cash, err := s.accountRepo.LockCash(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.checkHoldings(ctx, userID, symbol, shares); err != nil {
			return err
		}
		next, err := s.swapCash(ctx, userID, cash, proceeds)
		if err != nil {
			return err
		}
		tx, err := s.transactionRepo.CreateTransaction(ctx, &domain.Transaction{
			UserID:     userID,
			Symbol:     symbol,
			Name:       quote.Name,
			Shares:     -shares,
			Price:      quote.Price,
			Total:      proceeds.Neg(),
			ExecutedAt: s.now(),
		})
		if err != nil {
			return err
		}
		result.Transaction = *tx
		result.Cash = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("shares sold",
		zap.Int("userID", userID),
		zap.String("symbol", symbol),
		zap.Int64("shares", shares),
		zap.Stringer("price", quote.Price),
	)
	return result, nil
}

func (s *Service) GetHistory(ctx context.Context, userID int) ([]domain.Transaction, error) {
	txs, err := s.transactionRepo.GetTransactionsByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch history", zap.Int("userID", userID), zap.Error(err))
		return nil, storeErr(err)
	}
	return txs, nil
}

func (s *Service) GetDeposits(ctx context.Context, userID int) ([]domain.Deposit, error) {
	deposits, err := s.depositRepo.GetDepositsByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch deposits", zap.Int("userID", userID), zap.Error(err))
		return nil, storeErr(err)
	}
	return deposits, nil
}

func (s *Service) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol, ok := validate.Symbol(symbol)
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		zap.L().Warn("quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}
	return quote, nil
}

func (s *Service) checkHoldings(ctx context.Context, userID int, symbol string, shares int64) error {
	held, err := s.transactionRepo.GetSharesHeld(ctx, userID, symbol)
	if err != nil {
		return storeErr(err)
	}
	if held < shares {
		return domain.ErrInsufficientShares
	}
	return nil
}

// addCash locks the user's row and moves the balance by delta. It must run
// inside a store transaction.
func (s *Service) addCash(ctx context.Context, userID int, delta decimal.Decimal) (decimal.Decimal, error) {
	cash, err := s.accountRepo.LockCash(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.swapCash(ctx, userID, cash, delta)
}

// swapCash writes cash+delta with a compare-and-swap against cash, the value
// read under the row lock.
func (s *Service) swapCash(ctx context.Context, userID int, cash, delta decimal.Decimal) (decimal.Decimal, error) {
	next := cash.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientFunds
	}
	if next.GreaterThan(validate.MaxCash) {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	swapped, err := s.accountRepo.CompareAndSwapCash(ctx, userID, cash, next)
	if err != nil {
		return decimal.Zero, err
	}
	if !swapped {
		return decimal.Zero, errCashConflict
	}
	return next, nil
}

// atomically runs fn in a store transaction, retrying from a fresh read when
// another writer changed the cash balance in between.
func (s *Service) atomically(ctx context.Context, op string, userID int, fn pg.TransactionalFn) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.txManager.Begin(ctx, fn)
		if !errors.Is(err, errCashConflict) {
			break
		}
		zap.L().Warn("cash conflict, retrying",
			zap.String("op", op),
			zap.Int("userID", userID),
			zap.Int("attempt", attempt),
		)
	}

	switch {
	case err == nil:
		return nil
	case domain.IsValidation(err), errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrStoreUnavailable):
		return err
	default:
		zap.L().Error("ledger update failed", zap.String("op", op), zap.Int("userID", userID), zap.Error(err))
		return storeErr(err)
	}
}

func storeErr(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
