package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"
	"gig-marketplace/pkg/apperror"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Committer runs fn so that no reader observes part of its effects.
type Committer interface {
	Commit(fn func() error) error
}

type directCommit struct{}

func (directCommit) Commit(fn func() error) error { return fn() }

// PaymentFlowConfig tunes the simulated settlement.
type PaymentFlowConfig struct {
	ProcessingDelay time.Duration
	Providers       []string
	MaxRetries      int
	MaxBackoff      time.Duration
}

// PaymentFlow drives one payment at a time through
// Idle -> AppSelection -> Processing -> Success -> Idle.
// Processing ends on a timer; a failed settlement lands in Failed, from which
// the caller may Retry or Cancel. The ledger is only touched by Finish.
type PaymentFlow struct {
	mu        sync.Mutex
	state     domain.FlowState
	timer     *clock.Timer
	cancelCtx context.CancelFunc
	enteredAt time.Time // when the current Processing stage began
	finishing bool      // Finish is committing; the stage stays Success until it returns
	retry     *backoff.ExponentialBackOff

	ledger  ports.WalletLedger
	chats   ports.ConversationStore
	settler ports.Settler
	metrics ports.PaymentMetrics
	commit  Committer
	clock   clock.Clock
	cfg     PaymentFlowConfig

	listeners listeners[domain.FlowState]
	log       zerolog.Logger
}

// PaymentFlowOption customizes a PaymentFlow.
type PaymentFlowOption func(*PaymentFlow)

// WithSettler replaces the default simulated settler.
func WithSettler(s ports.Settler) PaymentFlowOption {
	return func(f *PaymentFlow) { f.settler = s }
}

// WithMetrics records flow outcomes.
func WithMetrics(m ports.PaymentMetrics) PaymentFlowOption {
	return func(f *PaymentFlow) { f.metrics = m }
}

// WithCommitter makes Finish's debit and notice append one visible step.
func WithCommitter(c Committer) PaymentFlowOption {
	return func(f *PaymentFlow) { f.commit = c }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) PaymentFlowOption {
	return func(f *PaymentFlow) { f.clock = c }
}

// NewPaymentFlow creates an idle flow.
func NewPaymentFlow(
	ledger ports.WalletLedger,
	chats ports.ConversationStore,
	cfg PaymentFlowConfig,
	log zerolog.Logger,
	opts ...PaymentFlowOption,
) *PaymentFlow {
	f := &PaymentFlow{
		state:   domain.IdleState(),
		ledger:  ledger,
		chats:   chats,
		metrics: nopMetrics{},
		commit:  directCommit{},
		clock:   clock.New(),
		cfg:     cfg,
		log:     log,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.settler == nil {
		f.settler = NewSimulatedSettler(log)
	}
	if f.cfg.MaxBackoff < f.cfg.ProcessingDelay {
		f.cfg.MaxBackoff = f.cfg.ProcessingDelay
	}
	f.retry = &backoff.ExponentialBackOff{
		InitialInterval:     f.cfg.ProcessingDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         f.cfg.MaxBackoff,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               f.clock,
	}
	f.retry.Reset()
	return f
}

// State returns a snapshot of the machine.
func (f *PaymentFlow) State() domain.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn to receive every state change.
// The returned func unsubscribes.
func (f *PaymentFlow) Subscribe(fn func(domain.FlowState)) func() {
	return f.listeners.add(fn)
}

// Start moves Idle -> AppSelection. The amount must be positive and covered by
// the current balance; otherwise the request is rejected and the flow stays Idle.
// counterparty names the conversation that receives the payment notice.
func (f *PaymentFlow) Start(counterparty string, amount decimal.Decimal) error {
	f.mu.Lock()
	if f.state.Stage != domain.FlowStageIdle || f.finishing {
		stage := f.state.Stage
		f.mu.Unlock()
		return apperror.ErrInvalidTransition("start a payment", string(stage))
	}
	if strings.TrimSpace(counterparty) == "" {
		f.mu.Unlock()
		return apperror.ErrInvalidConversation()
	}
	if !amount.IsPositive() {
		f.mu.Unlock()
		f.metrics.Rejected("invalid_amount")
		return apperror.ErrInvalidAmount()
	}
	if amount.GreaterThan(f.ledger.Balance()) {
		f.mu.Unlock()
		f.metrics.Rejected("insufficient_funds")
		f.log.Info().Str("counterparty", counterparty).Str("amount", amount.String()).Msg("payment rejected: insufficient funds")
		return apperror.ErrInsufficientFunds()
	}

	f.state = domain.FlowState{
		Stage:        domain.FlowStageAppSelection,
		Counterparty: counterparty,
		Amount:       amount,
	}
	state := f.state
	f.mu.Unlock()

	f.metrics.Started()
	f.log.Info().Str("counterparty", counterparty).Str("amount", amount.String()).Msg("payment started")
	f.listeners.notify(state)
	return nil
}

// SelectProvider moves AppSelection -> Processing and arms the settlement timer.
func (f *PaymentFlow) SelectProvider(name string) error {
	f.mu.Lock()
	if f.state.Stage != domain.FlowStageAppSelection {
		stage := f.state.Stage
		f.mu.Unlock()
		return apperror.ErrInvalidTransition("select a provider", string(stage))
	}
	if !f.knownProvider(name) {
		f.mu.Unlock()
		return apperror.ErrUnknownProvider(name)
	}

	f.state.Provider = name
	f.state.Attempts = 0
	f.retry.Reset()
	f.enterProcessingLocked(f.cfg.ProcessingDelay)
	state := f.state
	f.mu.Unlock()

	f.log.Info().
		Str("provider", name).
		Str("attempt", state.Attempt.String()).
		Dur("delay", f.cfg.ProcessingDelay).
		Msg("payment processing")
	f.listeners.notify(state)
	return nil
}

// Retry re-enters Processing from Failed after an exponential backoff delay.
func (f *PaymentFlow) Retry() error {
	f.mu.Lock()
	if f.state.Stage != domain.FlowStageFailed {
		stage := f.state.Stage
		f.mu.Unlock()
		return apperror.ErrInvalidTransition("retry", string(stage))
	}
	if f.state.Attempts > f.cfg.MaxRetries {
		attempts := f.state.Attempts
		f.mu.Unlock()
		return apperror.ErrRetryExhausted(attempts)
	}

	delay := f.retry.NextBackOff()
	f.enterProcessingLocked(delay)
	state := f.state
	f.mu.Unlock()

	f.log.Info().
		Str("provider", state.Provider).
		Int("attempts", state.Attempts).
		Dur("delay", delay).
		Msg("payment retry scheduled")
	f.listeners.notify(state)
	return nil
}

// enterProcessingLocked arms the settlement timer under a fresh attempt id.
func (f *PaymentFlow) enterProcessingLocked(delay time.Duration) {
	f.stopTimerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	attempt := uuid.New()
	f.state.Stage = domain.FlowStageProcessing
	f.state.Attempt = attempt
	f.state.LastError = ""
	f.enteredAt = f.clock.Now()
	f.cancelCtx = cancel
	f.timer = f.clock.AfterFunc(delay, func() { f.settle(ctx, attempt) })
}

// settle runs when the processing timer fires. A fire for an attempt that is
// no longer current is dropped.
func (f *PaymentFlow) settle(ctx context.Context, attempt uuid.UUID) {
	f.mu.Lock()
	if f.state.Stage != domain.FlowStageProcessing || f.state.Attempt != attempt {
		f.mu.Unlock()
		f.log.Debug().Str("attempt", attempt.String()).Msg("stale settlement timer ignored")
		return
	}
	req := ports.SettlementRequest{
		Attempt:      attempt,
		Counterparty: f.state.Counterparty,
		Amount:       f.state.Amount,
		Provider:     f.state.Provider,
		Try:          f.state.Attempts + 1,
	}
	f.mu.Unlock()

	err := f.settler.Settle(ctx, req)

	f.mu.Lock()
	if f.state.Stage != domain.FlowStageProcessing || f.state.Attempt != attempt {
		f.mu.Unlock()
		f.log.Debug().Str("attempt", attempt.String()).Msg("settlement finished after flow was abandoned")
		return
	}
	f.state.Attempts++
	f.stopTimerLocked()
	latency := f.clock.Since(f.enteredAt)
	if err != nil {
		f.state.Stage = domain.FlowStageFailed
		f.state.LastError = apperror.ErrSettlementFailed(err).Error()
		f.metrics.Failed(f.state.Provider)
	} else {
		f.state.Stage = domain.FlowStageSuccess
		f.metrics.Settled(f.state.Provider, latency)
	}
	state := f.state
	f.mu.Unlock()

	if err != nil {
		f.log.Warn().Err(err).
			Str("provider", state.Provider).
			Int("attempts", state.Attempts).
			Msg("settlement failed")
	} else {
		f.log.Info().
			Str("provider", state.Provider).
			Str("amount", state.Amount.String()).
			Msg("settlement confirmed")
	}
	f.listeners.notify(state)
}

// Finish leaves Success: it debits the ledger, appends a TransactionNotice to
// the counterparty's conversation and returns the flow to Idle. If the debit
// is rejected the flow still returns to Idle and no notice is written.
// No new payment can start until the commit has returned.
func (f *PaymentFlow) Finish() (*domain.Transaction, error) {
	f.mu.Lock()
	if f.state.Stage != domain.FlowStageSuccess || f.finishing {
		stage := f.state.Stage
		f.mu.Unlock()
		return nil, apperror.ErrInvalidTransition("finish", string(stage))
	}
	f.finishing = true
	done := f.state
	f.mu.Unlock()

	var tx *domain.Transaction
	err := f.commit.Commit(func() error {
		var err error
		tx, err = f.ledger.DebitRef(done.Counterparty, done.Amount, done.Attempt)
		if err != nil {
			return err
		}
		return f.chats.Append(done.Counterparty, domain.TransactionNotice{
			Sender:        domain.SenderMe,
			Amount:        done.Amount,
			Status:        domain.NoticeStatusCompleted,
			TransactionID: tx.ID,
			Time:          tx.CreatedAt,
		})
	})

	f.mu.Lock()
	f.finishing = false
	if f.state.Stage == domain.FlowStageSuccess && f.state.Attempt == done.Attempt {
		f.state = domain.IdleState()
	}
	idle := f.state
	f.mu.Unlock()

	if err != nil {
		f.metrics.Rejected("finish_failed")
		f.log.Error().Err(err).Str("counterparty", done.Counterparty).Msg("payment finish failed")
		f.listeners.notify(idle)
		return nil, err
	}

	f.metrics.Completed(done.Amount)
	f.log.Info().
		Int64("tx_id", tx.ID).
		Str("counterparty", done.Counterparty).
		Str("provider", done.Provider).
		Str("amount", done.Amount.String()).
		Msg("payment completed")
	f.listeners.notify(idle)
	return tx, nil
}

// Cancel backs out of AppSelection or Failed. It is a no-op when Idle and
// rejected once settlement has begun.
func (f *PaymentFlow) Cancel() error {
	f.mu.Lock()
	stage := f.state.Stage
	switch stage {
	case domain.FlowStageIdle:
		f.mu.Unlock()
		return nil
	case domain.FlowStageAppSelection, domain.FlowStageFailed:
		f.state = domain.IdleState()
	default:
		f.mu.Unlock()
		return apperror.ErrCancelNotAllowed(string(stage))
	}
	state := f.state
	f.mu.Unlock()

	f.metrics.Cancelled(stage)
	f.log.Info().Str("from", string(stage)).Msg("payment cancelled")
	f.listeners.notify(state)
	return nil
}

// Dispose abandons the flow from any stage. A pending settlement timer is
// stopped and its attempt id retired so a late fire cannot resurrect the flow.
// The ledger is never touched.
func (f *PaymentFlow) Dispose() {
	f.mu.Lock()
	stage := f.state.Stage
	f.stopTimerLocked()
	f.state = domain.IdleState()
	state := f.state
	f.mu.Unlock()

	if stage == domain.FlowStageIdle {
		return
	}
	f.log.Info().Str("from", string(stage)).Msg("payment flow disposed")
	f.listeners.notify(state)
}

func (f *PaymentFlow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.cancelCtx != nil {
		f.cancelCtx()
		f.cancelCtx = nil
	}
}

func (f *PaymentFlow) knownProvider(name string) bool {
	for _, p := range f.cfg.Providers {
		if p == name {
			return true
		}
	}
	return false
}

type nopMetrics struct{}

func (nopMetrics) Started()                      {}
func (nopMetrics) Rejected(string)               {}
func (nopMetrics) Cancelled(domain.FlowStage)    {}
func (nopMetrics) Settled(string, time.Duration) {}
func (nopMetrics) Failed(string)                 {}
func (nopMetrics) Completed(decimal.Decimal)     {}
