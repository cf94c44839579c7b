package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/finance/internal/handlers/auth"
	"github.com/GlebRadaev/finance/internal/handlers/ledger"
	"github.com/GlebRadaev/finance/internal/handlers/trade"
	"github.com/GlebRadaev/finance/internal/repo"
	"github.com/GlebRadaev/finance/internal/service/authservice"
	"github.com/GlebRadaev/finance/internal/service/ledgerservice"
	pkgauth "github.com/GlebRadaev/finance/pkg/auth"
)

type Services struct {
	AuthService   auth.Service
	LedgerService ledger.Service
	TradeService  trade.Service
	JWTService    pkgauth.JWTServiceInterface
}

type Options struct {
	Quotes       ledgerservice.QuoteProvider
	JWTSecret    string
	TokenTTL     time.Duration
	StartingCash decimal.Decimal
}

func New(repo *repo.Repositories, opts Options) *Services {
	jwtService := pkgauth.NewJWTService(opts.JWTSecret)
	ledgerService := ledgerservice.New(
		repo.AccountRepo,
		repo.TransactionRepo,
		repo.DepositRepo,
		repo.TxManager,
		opts.Quotes,
		opts.StartingCash,
	)
	authService := authservice.New(repo.UserRepo, ledgerService, repo.TxManager, &pkgauth.HashService{}, jwtService, opts.TokenTTL)

	return &Services{
		AuthService:   authService,
		LedgerService: ledgerService,
		TradeService:  ledgerService,
		JWTService:    jwtService,
	}
}
