package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus describes the direction/settlement of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusOutgoing TransactionStatus = "OUTGOING"
	TransactionStatusIncoming TransactionStatus = "INCOMING"
)

// Transaction is an immutable ledger entry. Amount is signed: negative is money out.
type Transaction struct {
	ID           int64             `json:"id"` // assigned by the ledger, strictly increasing
	Counterparty string            `json:"counterparty"`
	Amount       decimal.Decimal   `json:"amount"`
	Status       TransactionStatus `json:"status"`
	Reference    *uuid.UUID        `json:"reference,omitempty"` // payment attempt that produced it
	CreatedAt    time.Time         `json:"created_at"`
}

// IsOutgoing returns true if the entry moved money out of the wallet.
func (t *Transaction) IsOutgoing() bool {
	return t.Amount.IsNegative()
}

// Magnitude returns the unsigned amount.
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}
