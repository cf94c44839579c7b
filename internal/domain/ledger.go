package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Holdings folds a transaction log into held positions. Symbols whose share
// sum is zero or negative are dropped. The result is sorted by symbol; Name
// is taken from the latest transaction of the symbol.
func Holdings(txs []Transaction) []Position {
	index := make(map[string]int)
	var positions []Position
	for _, tx := range txs {
		i, ok := index[tx.Symbol]
		if !ok {
			index[tx.Symbol] = len(positions)
			positions = append(positions, Position{Symbol: tx.Symbol, Name: tx.Name, Shares: tx.Shares})
			continue
		}
		positions[i].Shares += tx.Shares
		if tx.Name != "" {
			positions[i].Name = tx.Name
		}
	}

	held := positions[:0]
	for _, p := range positions {
		if p.Shares > 0 {
			held = append(held, p)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].Symbol < held[j].Symbol })
	return held
}

// SharesOf sums the signed share counts of symbol in the log.
func SharesOf(txs []Transaction, symbol string) int64 {
	var n int64
	for _, tx := range txs {
		if tx.Symbol == symbol {
			n += tx.Shares
		}
	}
	return n
}

// ReplayCash recomputes the cash balance from the audit logs. It must always
// equal the stored balance.
func ReplayCash(deposits []Deposit, txs []Transaction) decimal.Decimal {
	cash := decimal.Zero
	for _, d := range deposits {
		cash = cash.Add(d.Amount)
	}
	for _, tx := range txs {
		cash = cash.Add(tx.CashDelta())
	}
	return cash
}
