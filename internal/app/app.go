package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/finance/internal/audit"
	"github.com/GlebRadaev/finance/internal/config"
	"github.com/GlebRadaev/finance/internal/handlers"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/GlebRadaev/finance/internal/quotes"
	"github.com/GlebRadaev/finance/internal/repo"
	"github.com/GlebRadaev/finance/internal/service"
	"github.com/GlebRadaev/finance/pkg/clients"
	"github.com/GlebRadaev/finance/pkg/logger"
)

var ErrMissingAPIKey = errors.New("API_KEY not set")

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	auditor *audit.Service

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	if err = a.setup(ctx, cfg); err != nil {
		return err
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startAuditor(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// setup builds storage, services and handlers from cfg.
func (a *Application) setup(ctx context.Context, cfg *config.Config) error {
	if cfg.QuoteToken == "" {
		return ErrMissingAPIKey
	}
	if cfg.InsecureJWTSecret() {
		zap.L().Warn("JWT_SECRET not set, tokens are signed with the built-in default secret")
	}
	startingCash, err := decimal.NewFromString(cfg.StartingCash)
	if err != nil {
		return fmt.Errorf("invalid starting cash %q: %w", cfg.StartingCash, err)
	}

	repos, err := buildRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.repo = repos
	a.srv = service.New(a.repo, service.Options{
		Quotes:       quotes.New(cfg, clients.NewHTTPClient(cfg.QuoteTimeout)),
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		StartingCash: startingCash,
	})
	a.api = handlers.New(a.srv)
	a.auditor = audit.New(cfg.AuditPeriod, a.repo.UserIndex, a.repo.LedgerReader())
	return nil
}

func buildRepositories(ctx context.Context, cfg *config.Config) (*repo.Repositories, error) {
	if cfg.Database == "" {
		zap.L().Warn("DATABASE_URI not set, ledger is kept in memory and lost on restart")
		return repo.NewInMemory(), nil
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return nil, fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return nil, fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	return repo.New(pg.New(pool), txManager), nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startAuditor(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.auditor.Start(ctx)
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
