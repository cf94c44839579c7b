package memoryrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store keeps users, transactions and deposits in process memory. It
// implements every repository the services need plus pg.TXManager, so it can
// stand in for postgres when no DATABASE_URI is configured.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users    map[int]domain.User
	byName   map[string]int
	txs      map[int][]domain.Transaction
	deposits map[int][]domain.Deposit

	lastUserID    int
	lastTxID      int64
	lastDepositID int64
}

var _ pg.TXManager = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[int]domain.User),
		byName:   make(map[string]int),
		txs:      make(map[int][]domain.Transaction),
		deposits: make(map[int][]domain.Deposit),
	}
}

type journalKey struct{}

// journal collects the undo steps of the writes made inside one transaction.
type journal struct {
	undo []func()
}

func journalFromContext(ctx context.Context) (*journal, bool) {
	j, ok := ctx.Value(journalKey{}).(*journal)
	return j, ok
}

// record must be called with s.mu held.
func record(ctx context.Context, undo func()) {
	if j, ok := journalFromContext(ctx); ok {
		j.undo = append(j.undo, undo)
	}
}

// Begin runs fn as one transaction. Transactions are serialized; on error or
// panic every write made through ctx is undone in reverse order.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) (err error) {
	if _, ok := journalFromContext(ctx); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(j)
			panic(p)
		}
		if err != nil {
			s.rollback(j)
		}
	}()

	return fn(context.WithValue(ctx, journalKey{}, j))
}

func (s *Store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	zap.L().Debug("in-memory transaction rolled back", zap.Int("writes", len(j.undo)))
}

func (s *Store) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	s.lastUserID++
	user.ID = s.lastUserID
	user.Cash = decimal.Zero
	user.CreatedAt = time.Now()

	s.users[user.ID] = *user
	s.byName[user.Username] = user.ID

	id, name := user.ID, user.Username
	record(ctx, func() {
		delete(s.users, id)
		delete(s.byName, name)
	})
	return user, nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *Store) GetCash(_ context.Context, userID int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	return user.Cash, nil
}

// LockCash is GetCash: transactions on the store already run one at a time.
func (s *Store) LockCash(ctx context.Context, userID int) (decimal.Decimal, error) {
	return s.GetCash(ctx, userID)
}

func (s *Store) CompareAndSwapCash(ctx context.Context, userID int, expected, next decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || !user.Cash.Equal(expected) {
		return false, nil
	}
	prev := user.Cash
	user.Cash = next
	s.users[userID] = user

	record(ctx, func() {
		u := s.users[userID]
		u.Cash = prev
		s.users[userID] = u
	})
	return true, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[tx.UserID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	s.lastTxID++
	tx.ID = s.lastTxID
	s.txs[tx.UserID] = append(s.txs[tx.UserID], *tx)

	userID := tx.UserID
	record(ctx, func() {
		list := s.txs[userID]
		s.txs[userID] = list[:len(list)-1]
	})
	return tx, nil
}

func (s *Store) GetTransactionsByUserID(_ context.Context, userID int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.txs[userID]
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]domain.Transaction, len(list))
	copy(out, list)
	return out, nil
}

func (s *Store) GetSharesHeld(_ context.Context, userID int, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.SharesOf(s.txs[userID], symbol), nil
}

func (s *Store) CreateDeposit(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[deposit.UserID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	s.lastDepositID++
	deposit.ID = s.lastDepositID
	s.deposits[deposit.UserID] = append(s.deposits[deposit.UserID], *deposit)

	userID := deposit.UserID
	record(ctx, func() {
		list := s.deposits[userID]
		s.deposits[userID] = list[:len(list)-1]
	})
	return deposit, nil
}

func (s *Store) GetDepositsByUserID(_ context.Context, userID int) ([]domain.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.deposits[userID]
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]domain.Deposit, len(list))
	copy(out, list)
	return out, nil
}
