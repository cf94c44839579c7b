package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/finance/docs"
	authhandlers "github.com/GlebRadaev/finance/internal/handlers/auth"
	ledgerhandlers "github.com/GlebRadaev/finance/internal/handlers/ledger"
	tradehandlers "github.com/GlebRadaev/finance/internal/handlers/trade"
	"github.com/GlebRadaev/finance/internal/service"
	"github.com/GlebRadaev/finance/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type LedgerHandler interface {
	GetPortfolio(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
	GetDeposits(w http.ResponseWriter, r *http.Request)
}

type TradeHandler interface {
	Quote(w http.ResponseWriter, r *http.Request)
	Buy(w http.ResponseWriter, r *http.Request)
	Sell(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler   AuthHandler
	LedgerHandler LedgerHandler
	TradeHandler  TradeHandler
	jwtService    auth.JWTServiceInterface
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:   authhandlers.New(s.AuthService),
		LedgerHandler: ledgerhandlers.New(s.LedgerService),
		TradeHandler:  tradehandlers.New(s.TradeService),
		jwtService:    s.JWTService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.NoCache,
		middleware.Heartbeat("/ping"),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	authMiddleware := auth.AuthMiddleware(h.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Get("/portfolio", h.LedgerHandler.GetPortfolio)
				r.Get("/history", h.LedgerHandler.GetHistory)
				r.Post("/deposit", h.LedgerHandler.Deposit)
				r.Get("/deposits", h.LedgerHandler.GetDeposits)
				r.Post("/buy", h.TradeHandler.Buy)
				r.Post("/sell", h.TradeHandler.Sell)
			})
		})
		r.With(authMiddleware).Get("/quote/{symbol}", h.TradeHandler.Quote)
	})

	return r
}
