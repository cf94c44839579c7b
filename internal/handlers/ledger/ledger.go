package ledger

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/dto"
	"github.com/GlebRadaev/finance/internal/handlers/httperr"
	"github.com/GlebRadaev/finance/pkg/auth"
	"github.com/GlebRadaev/finance/pkg/utils"
)

//go:generate mockgen -source=ledger.go -destination=mock_ledger.go -package=ledger

type Service interface {
	GetPortfolio(ctx context.Context, userID int) (*domain.Portfolio, error)
	Deposit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error)
	GetHistory(ctx context.Context, userID int) ([]domain.Transaction, error)
	GetDeposits(ctx context.Context, userID int) ([]domain.Deposit, error)
}

type LedgerHandler struct {
	ledgerService Service
}

func New(ledgerService Service) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// GetPortfolio godoc
//
//	@Summary		Get portfolio
//	@Description	Current holdings priced at live quotes, cash and total account value.
//	@Tags			Ledger
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.PortfolioResponseDTO	"Portfolio"
//	@Failure		401	{object}	utils.Response				"User not authorized"
//	@Failure		503	{object}	utils.Response				"Quote service or store unavailable"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/user/portfolio [get]
func (h *LedgerHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	portfolio, err := h.ledgerService.GetPortfolio(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPortfolioResponse(portfolio))
}

// Deposit godoc
//
//	@Summary		Deposit cash
//	@Description	Add cash to the account. The amount must be non-negative with at most two decimal places.
//	@Tags			Ledger
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit request payload"
//	@Success		200		{object}	dto.CashResponseDTO		"New cash balance"
//	@Failure		400		{object}	utils.Response			"Invalid amount"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		503		{object}	utils.Response			"Store unavailable"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/user/deposit [post]
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Amount.Valid {
		utils.RespondWithError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		return
	}

	cash, err := h.ledgerService.Deposit(r.Context(), userID, req.Amount.Decimal)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCashResponse(cash))
}

// GetHistory godoc
//
//	@Summary		Get transaction history
//	@Description	Every executed trade of the authenticated user in execution order.
//	@Tags			Ledger
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionDTO	"Transactions"
//	@Success		204	{object}	utils.Response		"No transactions"
//	@Failure		401	{object}	utils.Response		"User not authorized"
//	@Failure		503	{object}	utils.Response		"Store unavailable"
//	@Failure		500	{object}	utils.Response		"Internal server error"
//	@Router			/api/user/history [get]
func (h *LedgerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	txs, err := h.ledgerService.GetHistory(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(txs) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "Transactions not found")
		return
	}

	response := make([]dto.TransactionDTO, len(txs))
	for i, tx := range txs {
		response[i] = dto.NewTransaction(tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetDeposits godoc
//
//	@Summary		Get deposits
//	@Description	Every cash deposit of the authenticated user, starting with the opening grant.
//	@Tags			Ledger
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.DepositDTO	"Deposits"
//	@Success		204	{object}	utils.Response	"No deposits"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		503	{object}	utils.Response	"Store unavailable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/deposits [get]
func (h *LedgerHandler) GetDeposits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deposits, err := h.ledgerService.GetDeposits(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(deposits) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "Deposits not found")
		return
	}

	response := make([]dto.DepositDTO, len(deposits))
	for i, d := range deposits {
		response[i] = dto.DepositDTO{
			ID:          d.ID,
			Amount:      dto.Amount(d.Amount),
			DepositedAt: d.DepositedAt,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
