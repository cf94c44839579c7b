package trade

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/dto"
	"github.com/GlebRadaev/finance/internal/handlers/httperr"
	"github.com/GlebRadaev/finance/pkg/auth"
	"github.com/GlebRadaev/finance/pkg/utils"
)

//go:generate mockgen -source=trade.go -destination=mock_trade.go -package=trade

type Service interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	Buy(ctx context.Context, userID int, symbol string, shares int64) (*domain.TradeResult, error)
	Sell(ctx context.Context, userID int, symbol string, shares int64) (*domain.TradeResult, error)
}

type TradeHandler struct {
	tradeService Service
}

func New(tradeService Service) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// Quote godoc
//
//	@Summary		Look up a quote
//	@Description	Current price and company name for a ticker symbol.
//	@Tags			Trade
//	@Security		BearerAuth
//	@Produce		json
//	@Param			symbol	path		string					true	"Ticker symbol"
//	@Success		200		{object}	dto.QuoteResponseDTO	"Quote"
//	@Failure		400		{object}	utils.Response			"Invalid symbol"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		503		{object}	utils.Response			"Quote service unavailable"
//	@Router			/api/quote/{symbol} [get]
func (h *TradeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.tradeService.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewQuoteResponse(quote))
}

// Buy godoc
//
//	@Summary		Buy shares
//	@Description	Buy shares at the current quote. The cost is taken from cash.
//	@Tags			Trade
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TradeRequestDTO		true	"Trade request payload"
//	@Success		200		{object}	dto.TradeResponseDTO	"Executed trade and new cash balance"
//	@Failure		400		{object}	utils.Response			"Invalid symbol or share count"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		402		{object}	utils.Response			"Not enough cash"
//	@Failure		503		{object}	utils.Response			"Quote service or store unavailable"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/buy [post]
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeService.Buy)
}

// Sell godoc
//
//	@Summary		Sell shares
//	@Description	Sell owned shares at the current quote. The proceeds are added to cash.
//	@Tags			Trade
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TradeRequestDTO		true	"Trade request payload"
//	@Success		200		{object}	dto.TradeResponseDTO	"Executed trade and new cash balance"
//	@Failure		400		{object}	utils.Response			"Invalid symbol or share count"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		422		{object}	utils.Response			"Not enough shares"
//	@Failure		503		{object}	utils.Response			"Quote service or store unavailable"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/sell [post]
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradeService.Sell)
}

type tradeFn func(ctx context.Context, userID int, symbol string, shares int64) (*domain.TradeResult, error)

func (h *TradeHandler) trade(w http.ResponseWriter, r *http.Request, execute tradeFn) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.TradeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := execute(r.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTradeResponse(result))
}
