package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"gig-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SearchQuery holds the input for a proximity search.
type SearchQuery struct {
	Center      domain.GeoPoint
	RadiusMiles float64
	Kind        domain.ListingKind // empty = workers and jobs
}

// Settler confirms a payment with the selected provider once the processing delay elapses.
type Settler interface {
	Settle(ctx context.Context, req SettlementRequest) error
}

// SettlementRequest describes one settlement attempt.
type SettlementRequest struct {
	Attempt      uuid.UUID
	Counterparty string
	Amount       decimal.Decimal
	Provider     string
	Try          int // 1-based
}

// PaymentMetrics records payment flow outcomes.
type PaymentMetrics interface {
	Started()
	Rejected(reason string)
	Cancelled(stage domain.FlowStage)
	Settled(provider string, latency time.Duration)
	Failed(provider string)
	Completed(amount decimal.Decimal)
}

// RateLimiter throttles actions per key.
type RateLimiter interface {
	Allow(key string, now time.Time) bool
}
