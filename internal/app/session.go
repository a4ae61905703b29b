package app

import (
	"context"
	"fmt"
	"sync"

	"gig-marketplace/config"
	"gig-marketplace/internal/adapter/metrics"
	"gig-marketplace/internal/adapter/ratelimit"
	"gig-marketplace/internal/adapter/storage/memory"
	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"
	"gig-marketplace/internal/service"
	"gig-marketplace/pkg/logger"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Session is one user's marketplace state: catalog, wallet, chats and the
// single active payment flow. Finishing a payment debits the wallet and posts
// the notice under the session's write lock, so Wallet, Conversation and View
// never observe one without the other.
type Session struct {
	mu     sync.RWMutex
	events *service.Dispatcher
	center domain.GeoPoint
	radius float64

	Catalog  *memory.Catalog
	Search   *service.ProximityService
	Ledger   *service.LedgerService
	Chats    *service.ConversationService
	Payments *service.PaymentFlow

	cfg *config.Config
	log zerolog.Logger
}

type sessionOptions struct {
	clock    clock.Clock
	settler  ports.Settler
	registry prometheus.Registerer
}

// Option customizes NewSession.
type Option func(*sessionOptions)

// WithClock replaces the wall clock for every component.
func WithClock(c clock.Clock) Option {
	return func(o *sessionOptions) { o.clock = c }
}

// WithSettler replaces the simulated settler.
func WithSettler(s ports.Settler) Option {
	return func(o *sessionOptions) { o.settler = s }
}

// WithRegistry registers payment metrics with reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *sessionOptions) { o.registry = reg }
}

// NewSession wires a session from cfg, loading the catalog seed and existing conversations.
func NewSession(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Session, error) {
	o := sessionOptions{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	balance, err := cfg.Wallet.Balance()
	if err != nil {
		return nil, err
	}

	seed, err := memory.LoadSeedFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog, err := memory.NewCatalog(seed.Listings())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	s := &Session{
		events: service.NewDispatcher(),
		center: domain.GeoPoint{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude},
		radius: cfg.Search.RadiusMiles,
		cfg:    cfg,
		log:    logger.Component(log, "session"),
	}

	s.Catalog = catalog
	s.Search = service.NewProximityService(catalog, logger.Component(log, "search"))
	s.Ledger = service.NewLedgerService(balance, o.clock, s.events, logger.Component(log, "ledger"))
	s.Chats = service.NewConversationService(
		service.ConversationConfig{
			PreviewLength:  cfg.Chat.PreviewLength,
			CurrencySymbol: cfg.Wallet.CurrencySymbol,
		},
		ratelimit.New(cfg.Chat.RatePerSecond, cfg.Chat.Burst, 0),
		o.clock,
		s.events,
		logger.Component(log, "chat"),
	)

	for _, rec := range seed.Conversations {
		msgs, err := rec.ChatMessages()
		if err != nil {
			return nil, fmt.Errorf("load conversations: %w", err)
		}
		for _, m := range msgs {
			if err := s.Chats.Append(rec.ID, m); err != nil {
				return nil, fmt.Errorf("load conversation %s: %w", rec.ID, err)
			}
		}
	}

	flowOpts := []service.PaymentFlowOption{
		service.WithClock(o.clock),
		service.WithCommitter(s),
	}
	if o.settler != nil {
		flowOpts = append(flowOpts, service.WithSettler(o.settler))
	}
	if o.registry != nil {
		collector, err := metrics.NewPaymentCollector(o.registry)
		if err != nil {
			return nil, fmt.Errorf("register payment metrics: %w", err)
		}
		flowOpts = append(flowOpts, service.WithMetrics(collector))
	}
	s.Payments = service.NewPaymentFlow(
		s.Ledger,
		s.Chats,
		service.PaymentFlowConfig{
			ProcessingDelay: cfg.Payment.ProcessingDelay,
			Providers:       cfg.Payment.Providers,
			MaxRetries:      cfg.Payment.MaxRetries,
			MaxBackoff:      cfg.Payment.MaxBackoff,
		},
		logger.Component(log, "payment"),
		flowOpts...,
	)

	s.log.Info().
		Int("listings", catalog.Len()).
		Int("conversations", len(seed.Conversations)).
		Str("balance", balance.String()).
		Msg("session ready")
	return s, nil
}

// Commit runs fn under the session write lock. Change notifications raised
// inside fn are delivered after the lock is released.
func (s *Session) Commit(fn func() error) error {
	s.events.Hold()
	defer s.events.Release()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Wallet returns the current balance and history.
func (s *Session) Wallet() domain.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Ledger.Snapshot()
}

// Conversation returns the messages exchanged with id.
func (s *Session) Conversation(id string) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Chats.Messages(id)
}

// View returns the wallet and one conversation as a single consistent read.
func (s *Session) View(id string) (domain.WalletState, []domain.ChatMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Ledger.Snapshot(), s.Chats.Messages(id)
}

// Center returns the current search center.
func (s *Session) Center() domain.GeoPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.center
}

// Radius returns the current search radius in miles.
func (s *Session) Radius() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radius
}

// MoveTo changes the search center.
func (s *Session) MoveTo(p domain.GeoPoint) {
	s.mu.Lock()
	s.center = p
	s.mu.Unlock()
}

// SetRadius changes the search radius.
func (s *Session) SetRadius(miles float64) {
	s.mu.Lock()
	s.radius = miles
	s.mu.Unlock()
}

// Nearby searches around the current center and radius.
func (s *Session) Nearby(ctx context.Context, kind domain.ListingKind) ([]domain.ProximityResult, error) {
	return s.Search.Search(ctx, ports.SearchQuery{
		Center:      s.Center(),
		RadiusMiles: s.Radius(),
		Kind:        kind,
	})
}

// Close abandons any payment in flight.
func (s *Session) Close() {
	s.Payments.Dispose()
	s.log.Debug().Msg("session closed")
}
