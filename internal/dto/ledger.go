package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/finance/internal/domain"
)

type PositionDTO struct {
	Symbol       string `json:"symbol" example:"AAA"`
	Name         string `json:"name" example:"Triple A Inc"`
	Shares       int64  `json:"shares" example:"10"`
	Price        string `json:"price" example:"50.00"`
	Value        string `json:"value" example:"500.00"`
	ValueDisplay string `json:"value_display" example:"$500.00"`
}

type PortfolioResponseDTO struct {
	Positions    []PositionDTO `json:"positions"`
	Cash         string        `json:"cash" example:"9500.00"`
	CashDisplay  string        `json:"cash_display" example:"$9,500.00"`
	Total        string        `json:"total" example:"10000.00"`
	TotalDisplay string        `json:"total_display" example:"$10,000.00"`
}

func NewPortfolioResponse(p *domain.Portfolio) PortfolioResponseDTO {
	positions := make([]PositionDTO, len(p.Positions))
	for i, pos := range p.Positions {
		positions[i] = PositionDTO{
			Symbol:       pos.Symbol,
			Name:         pos.Name,
			Shares:       pos.Shares,
			Price:        Amount(pos.CurrentPrice),
			Value:        Amount(pos.Value()),
			ValueDisplay: USD(pos.Value()),
		}
	}
	return PortfolioResponseDTO{
		Positions:    positions,
		Cash:         Amount(p.Cash),
		CashDisplay:  USD(p.Cash),
		Total:        Amount(p.TotalValue),
		TotalDisplay: USD(p.TotalValue),
	}
}

type TransactionDTO struct {
	ID         int64     `json:"id" example:"1"`
	Symbol     string    `json:"symbol" example:"AAA"`
	Name       string    `json:"name" example:"Triple A Inc"`
	Shares     int64     `json:"shares" example:"-10"`
	Price      string    `json:"price" example:"60.00"`
	Total      string    `json:"total" example:"-600.00"`
	ExecutedAt time.Time `json:"executed_at" example:"2020-12-09T16:09:57+03:00"`
}

func NewTransaction(tx domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:         tx.ID,
		Symbol:     tx.Symbol,
		Name:       tx.Name,
		Shares:     tx.Shares,
		Price:      Amount(tx.Price),
		Total:      Amount(tx.Total),
		ExecutedAt: tx.ExecutedAt,
	}
}

type DepositRequestDTO struct {
	Amount decimal.NullDecimal `json:"amount" swaggertype:"string" example:"150.00"`
}

type CashResponseDTO struct {
	Cash        string `json:"cash" example:"10150.00"`
	CashDisplay string `json:"cash_display" example:"$10,150.00"`
}

func NewCashResponse(cash decimal.Decimal) CashResponseDTO {
	return CashResponseDTO{
		Cash:        Amount(cash),
		CashDisplay: USD(cash),
	}
}

type DepositDTO struct {
	ID          int64     `json:"id" example:"2"`
	Amount      string    `json:"amount" example:"150.00"`
	DepositedAt time.Time `json:"deposited_at" example:"2020-12-09T16:09:57+03:00"`
}
