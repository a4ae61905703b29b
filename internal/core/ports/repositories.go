package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"gig-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingCatalog is the read-only source of workers and jobs.
// Listings are loaded once and never change during a session.
type ListingCatalog interface {
	// List returns listings of the given kind in catalog order. An empty kind returns all.
	List(ctx context.Context, kind domain.ListingKind) ([]domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
}

// WalletLedger is the balance and history the payment flow debits on finish.
type WalletLedger interface {
	Balance() decimal.Decimal
	DebitRef(counterparty string, amount decimal.Decimal, ref uuid.UUID) (*domain.Transaction, error)
}

// ConversationStore is the append-only message log the payment flow writes notices to.
type ConversationStore interface {
	Append(conversationID string, msg domain.ChatMessage) error
}
