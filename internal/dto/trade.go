package dto

import (
	"github.com/GlebRadaev/finance/internal/domain"
)

type QuoteResponseDTO struct {
	Symbol       string `json:"symbol" example:"AAA"`
	Name         string `json:"name" example:"Triple A Inc"`
	Price        string `json:"price" example:"50.00"`
	PriceDisplay string `json:"price_display" example:"$50.00"`
}

func NewQuoteResponse(q *domain.Quote) QuoteResponseDTO {
	return QuoteResponseDTO{
		Symbol:       q.Symbol,
		Name:         q.Name,
		Price:        Amount(q.Price),
		PriceDisplay: USD(q.Price),
	}
}

type TradeRequestDTO struct {
	Symbol string `json:"symbol" example:"AAA"`
	Shares int64  `json:"shares" example:"10"`
}

type TradeResponseDTO struct {
	Transaction TransactionDTO `json:"transaction"`
	CashResponseDTO
}

func NewTradeResponse(r *domain.TradeResult) TradeResponseDTO {
	return TradeResponseDTO{
		Transaction:     NewTransaction(r.Transaction),
		CashResponseDTO: NewCashResponse(r.Cash),
	}
}
