package domain

import "github.com/shopspring/decimal"

// WalletState is a point-in-time view of the ledger.
// Transactions are ordered most-recent-first.
type WalletState struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Balance        decimal.Decimal `json:"balance"`
	Transactions   []Transaction   `json:"transactions"`
}

// Consistent reports whether Balance equals InitialBalance plus the sum of all amounts.
func (w WalletState) Consistent() bool {
	sum := w.InitialBalance
	for i := range w.Transactions {
		sum = sum.Add(w.Transactions[i].Amount)
	}
	return sum.Equal(w.Balance)
}
