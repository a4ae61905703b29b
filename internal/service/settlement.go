package service

import (
	"context"

	"gig-marketplace/internal/core/ports"

	"github.com/rs/zerolog"
)

// SimulatedSettler confirms every payment. No provider is contacted.
type SimulatedSettler struct {
	log zerolog.Logger
}

// NewSimulatedSettler creates a new SimulatedSettler.
func NewSimulatedSettler(log zerolog.Logger) *SimulatedSettler {
	return &SimulatedSettler{log: log}
}

// Settle implements ports.Settler.
func (s *SimulatedSettler) Settle(ctx context.Context, req ports.SettlementRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Debug().
		Str("attempt", req.Attempt.String()).
		Str("provider", req.Provider).
		Str("amount", req.Amount.String()).
		Int("try", req.Try).
		Msg("simulated settlement confirmed")
	return nil
}
