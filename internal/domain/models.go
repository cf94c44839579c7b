package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int             `db:"id"`
	Username     string          `db:"username"`
	PasswordHash string          `db:"password_hash"`
	Cash         decimal.Decimal `db:"cash"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Transaction is one executed trade. Shares is signed: positive for a buy,
// negative for a sell. Total is always Shares * Price.
type Transaction struct {
	ID         int64           `db:"id"`
	UserID     int             `db:"user_id"`
	Symbol     string          `db:"symbol"`
	Name       string          `db:"name"`
	Shares     int64           `db:"shares"`
	Price      decimal.Decimal `db:"price"`
	Total      decimal.Decimal `db:"total"`
	ExecutedAt time.Time       `db:"executed_at"`
}

// CashDelta is the change the trade made to the owner's cash.
func (t Transaction) CashDelta() decimal.Decimal {
	return t.Total.Neg()
}

type Deposit struct {
	ID          int64           `db:"id"`
	UserID      int             `db:"user_id"`
	Amount      decimal.Decimal `db:"amount"`
	DepositedAt time.Time       `db:"deposited_at"`
}

type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

type Position struct {
	Symbol       string
	Name         string
	Shares       int64
	CurrentPrice decimal.Decimal
}

// Value is the market value of the position at CurrentPrice.
func (p Position) Value() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Shares))
}

type Portfolio struct {
	Positions  []Position
	Cash       decimal.Decimal
	TotalValue decimal.Decimal
}

type TradeResult struct {
	Transaction Transaction
	Cash        decimal.Decimal
}
