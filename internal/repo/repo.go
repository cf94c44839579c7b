package repo

import (
	"github.com/GlebRadaev/finance/internal/audit"
	"github.com/GlebRadaev/finance/internal/pg"
	accountrepo "github.com/GlebRadaev/finance/internal/repo/account-repo"
	depositrepo "github.com/GlebRadaev/finance/internal/repo/deposit-repo"
	memoryrepo "github.com/GlebRadaev/finance/internal/repo/memory-repo"
	transactionrepo "github.com/GlebRadaev/finance/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/finance/internal/repo/user-repo"
	"github.com/GlebRadaev/finance/internal/service/authservice"
	"github.com/GlebRadaev/finance/internal/service/ledgerservice"
)

type Repositories struct {
	UserRepo        authservice.Repo
	AccountRepo     ledgerservice.AccountRepo
	TransactionRepo ledgerservice.TransactionRepo
	DepositRepo     ledgerservice.DepositRepo
	TxManager       pg.TXManager
	UserIndex       audit.UserRepo
}

// LedgerReader joins the ledger repositories into the read view the audit
// replays.
type LedgerReader struct {
	ledgerservice.AccountRepo
	ledgerservice.TransactionRepo
	ledgerservice.DepositRepo
}

func (r *Repositories) LedgerReader() *LedgerReader {
	return &LedgerReader{
		AccountRepo:     r.AccountRepo,
		TransactionRepo: r.TransactionRepo,
		DepositRepo:     r.DepositRepo,
	}
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn)

	return &Repositories{
		UserRepo:        userRepo,
		AccountRepo:     accountrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		DepositRepo:     depositrepo.New(conn),
		TxManager:       txManager,
		UserIndex:       userRepo,
	}
}

// NewInMemory backs every repository with one process-local store.
func NewInMemory() *Repositories {
	store := memoryrepo.New()
	return &Repositories{
		UserRepo:        store,
		AccountRepo:     store,
		TransactionRepo: store,
		DepositRepo:     store,
		TxManager:       store,
		UserIndex:       store,
	}
}
