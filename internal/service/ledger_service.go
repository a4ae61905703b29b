package service

import (
	"fmt"
	"sync"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/pkg/apperror"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerService owns the wallet balance and its transaction history.
// Every mutation updates both under one lock, so readers never see one without the other.
type LedgerService struct {
	mu      sync.RWMutex
	initial decimal.Decimal
	balance decimal.Decimal
	txs     []domain.Transaction // most-recent-first
	lastID  int64

	clock     clock.Clock
	events    *Dispatcher
	listeners listeners[domain.WalletState]
	log       zerolog.Logger
}

// NewLedgerService creates a ledger holding initial and no history.
// events may be nil.
func NewLedgerService(initial decimal.Decimal, clk clock.Clock, events *Dispatcher, log zerolog.Logger) *LedgerService {
	if clk == nil {
		clk = clock.New()
	}
	return &LedgerService{
		initial: initial,
		balance: initial,
		clock:   clk,
		events:  events,
		log:     log,
	}
}

// Debit removes amount from the wallet and records an outgoing transaction.
// Validation order: InvalidAmount, then InsufficientFunds. A rejected debit changes nothing.
func (s *LedgerService) Debit(counterparty string, amount decimal.Decimal) (*domain.Transaction, error) {
	return s.debit(counterparty, amount, nil)
}

// DebitRef is Debit tagged with the payment attempt that produced it.
func (s *LedgerService) DebitRef(counterparty string, amount decimal.Decimal, ref uuid.UUID) (*domain.Transaction, error) {
	return s.debit(counterparty, amount, &ref)
}

// Credit adds amount to the wallet and records an incoming transaction.
// Only a non-positive amount is rejected.
func (s *LedgerService) Credit(counterparty string, amount decimal.Decimal) (*domain.Transaction, error) {
	return s.credit(counterparty, amount, nil)
}

// CreditRef is Credit tagged with a payment reference.
func (s *LedgerService) CreditRef(counterparty string, amount decimal.Decimal, ref uuid.UUID) (*domain.Transaction, error) {
	return s.credit(counterparty, amount, &ref)
}

func (s *LedgerService) debit(counterparty string, amount decimal.Decimal, ref *uuid.UUID) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	s.mu.Lock()
	if amount.GreaterThan(s.balance) {
		balance := s.balance
		s.mu.Unlock()
		s.log.Info().
			Str("counterparty", counterparty).
			Str("amount", amount.String()).
			Str("balance", balance.String()).
			Msg("debit rejected: insufficient funds")
		return nil, apperror.ErrInsufficientFunds()
	}
	tx := s.record(counterparty, amount.Neg(), domain.TransactionStatusOutgoing, ref)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().
		Int64("tx_id", tx.ID).
		Str("counterparty", counterparty).
		Str("amount", tx.Amount.String()).
		Str("balance", state.Balance.String()).
		Msg("wallet debited")
	s.publish(state)
	return &tx, nil
}

func (s *LedgerService) credit(counterparty string, amount decimal.Decimal, ref *uuid.UUID) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	s.mu.Lock()
	tx := s.record(counterparty, amount, domain.TransactionStatusIncoming, ref)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().
		Int64("tx_id", tx.ID).
		Str("counterparty", counterparty).
		Str("amount", tx.Amount.String()).
		Str("balance", state.Balance.String()).
		Msg("wallet credited")
	s.publish(state)
	return &tx, nil
}

// record applies a signed amount and prepends the transaction. Caller holds s.mu.
func (s *LedgerService) record(counterparty string, signed decimal.Decimal, status domain.TransactionStatus, ref *uuid.UUID) domain.Transaction {
	s.lastID++
	tx := domain.Transaction{
		ID:           s.lastID,
		Counterparty: counterparty,
		Amount:       signed,
		Status:       status,
		Reference:    ref,
		CreatedAt:    s.clock.Now(),
	}
	s.balance = s.balance.Add(signed)
	s.txs = append([]domain.Transaction{tx}, s.txs...)
	return tx
}

// Balance returns the current balance.
func (s *LedgerService) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Transactions returns a copy of the history, most-recent-first.
func (s *LedgerService) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Snapshot returns balance and history as one consistent view.
func (s *LedgerService) Snapshot() domain.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *LedgerService) snapshotLocked() domain.WalletState {
	txs := make([]domain.Transaction, len(s.txs))
	copy(txs, s.txs)
	return domain.WalletState{
		InitialBalance: s.initial,
		Balance:        s.balance,
		Transactions:   txs,
	}
}

// Reconcile verifies balance == initial + sum(amounts).
func (s *LedgerService) Reconcile() error {
	state := s.Snapshot()
	if !state.Consistent() {
		return apperror.InternalError(fmt.Errorf(
			"ledger out of balance: balance %s, initial %s, %d transactions",
			state.Balance, state.InitialBalance, len(state.Transactions),
		))
	}
	return nil
}

// Subscribe registers fn to receive the wallet state after every change.
// The returned func unsubscribes.
func (s *LedgerService) Subscribe(fn func(domain.WalletState)) func() {
	return s.listeners.add(fn)
}

func (s *LedgerService) publish(state domain.WalletState) {
	s.events.Dispatch(func() { s.listeners.notify(state) })
}
